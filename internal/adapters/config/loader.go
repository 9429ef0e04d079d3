// Package config provides the weft.yaml unit loader.
package config

import (
	"fmt"
	"os"
	"path"

	"go.trai.ch/weft/internal/core/domain"
	"go.trai.ch/weft/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// DefaultFilename is the configuration file looked up in the build root.
const DefaultFilename = "weft.yaml"

// Loader implements ports.UnitLoader using a YAML file.
type Loader struct {
	logger ports.Logger
}

var _ ports.UnitLoader = (*Loader)(nil)

// NewLoader creates a Loader.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{
		logger: logger,
	}
}

// Load reads the configuration file and returns the declared units with
// directory and include nodes resolved against the tree. Units sharing a
// target name get incrementing indices so their generated file names never
// collide; sharing name and directory is an error.
func (l *Loader) Load(configPath string, tree *domain.Tree) ([]*domain.Unit, error) {
	data, err := os.ReadFile(configPath) //nolint:gosec // path is provided by user
	if err != nil {
		return nil, zerr.Wrap(err, "failed to read config file")
	}

	var file Weftfile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, zerr.Wrap(err, "failed to parse config file")
	}

	if len(file.Units) == 0 {
		return nil, zerr.With(domain.ErrNoUnits, "config", configPath)
	}

	var (
		units []*domain.Unit
		idx   = make(map[string]int)
		seen  = make(map[string]struct{})
	)
	for _, dto := range file.Units {
		if dto.Name == "" {
			return nil, zerr.With(zerr.New("unit declared without a name"), "config", configPath)
		}

		dirRel := dto.Dir
		if dirRel == "" {
			dirRel = "."
		}
		dir := tree.FindNode(dirRel)
		if dir == nil {
			return nil, zerr.With(zerr.With(zerr.New("unit directory not found"),
				"unit", dto.Name), "dir", dirRel)
		}

		key := dto.Name + "\x00" + dir.Rel()
		if _, dup := seen[key]; dup {
			return nil, zerr.With(zerr.With(domain.ErrDuplicateUnit,
				"unit", dto.Name), "dir", dir.Rel())
		}
		seen[key] = struct{}{}

		u := &domain.Unit{
			Name:     dto.Name,
			Idx:      idx[dto.Name],
			Dir:      dir,
			Source:   dto.Source,
			Includes: dto.Includes,
			Features: dto.Features,
			Defines:  dto.Defines,
			Use:      dto.Use,
			Moc:      dto.Moc,
			Lang:     dto.Lang,
			Update:   dto.Update,
			LangName: dto.LangName,
			Env:      domain.NewEnv(),
		}
		idx[dto.Name]++

		l.resolveIncludes(u, tree)
		u.Env.Append("DEFINES", dto.Defines...)
		l.applyUse(u, file.Libs, tree)

		units = append(units, u)
	}
	return units, nil
}

// resolveIncludes turns the declared include directories into nodes and
// feeds the generator search path. Missing directories are skipped with a
// warning; a typo should not abort an otherwise valid build.
func (l *Loader) resolveIncludes(u *domain.Unit, tree *domain.Tree) {
	for _, inc := range u.Includes {
		node := tree.FindNode(path.Join(u.Dir.Rel(), inc))
		if node == nil {
			l.logger.Warn(fmt.Sprintf("unit %s: include directory %s not found, skipping", u.Name, inc))
			continue
		}
		u.IncludeNodes = append(u.IncludeNodes, node)
		u.Env.Append("INCPATHS", node.Abs())
	}
}

// applyUse merges the flag bundles named in the unit's use list into the
// unit environment.
func (l *Loader) applyUse(u *domain.Unit, libs map[string]LibDTO, tree *domain.Tree) {
	for _, tag := range u.Use {
		lib, ok := libs[tag]
		if !ok {
			l.logger.Warn(fmt.Sprintf("unit %s: unknown use tag %s, skipping", u.Name, tag))
			continue
		}
		u.Env.Append("DEFINES", lib.Defines...)
		u.Env.Append("CXXFLAGS", lib.Flags...)
		for _, inc := range lib.Includes {
			if node := tree.FindNode(inc); node != nil {
				u.Env.Append("INCPATHS", node.Abs())
			}
		}
	}
}
