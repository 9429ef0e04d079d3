package config

// Weftfile represents the structure of the weft.yaml configuration file.
type Weftfile struct {
	Version string            `yaml:"version"`
	Units   []UnitDTO         `yaml:"units"`
	Libs    map[string]LibDTO `yaml:"libs"`
}

// UnitDTO represents one build unit declaration.
type UnitDTO struct {
	Name     string   `yaml:"name"`
	Dir      string   `yaml:"dir"`
	Source   []string `yaml:"source"`
	Includes []string `yaml:"includes"`
	Features []string `yaml:"features"`
	Defines  []string `yaml:"defines"`
	Use      []string `yaml:"use"`
	Moc      []string `yaml:"moc"`
	Lang     []string `yaml:"lang"`
	Update   bool     `yaml:"update"`
	LangName string   `yaml:"langname"`
}

// LibDTO represents a named flag bundle units pull in through their use
// list.
type LibDTO struct {
	Defines  []string `yaml:"defines"`
	Includes []string `yaml:"includes"`
	Flags    []string `yaml:"flags"`
}
