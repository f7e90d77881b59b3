package config

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"

	"github.com/seyud/gpugov/internal/file"
	"github.com/seyud/gpugov/log"
)

type gameEntry struct {
	Package string `toml:"package"`
	Mode    string `toml:"mode"`
}

type gamesFile struct {
	Games []gameEntry `toml:"games"`
}

// LoadGames parses the games list at path into a package → mode map. A
// missing file is not an error: the foreground watcher just has nothing to
// match against.
func LoadGames(path string) (map[string]string, error) {
	if !file.Exists(path) {
		log.Info("No games list", "path", path)
		return map[string]string{}, nil
	}

	b, err := file.Read(path)
	if err != nil {
		return nil, fmt.Errorf("config: games list: %w", err)
	}
	var gf gamesFile
	if err := toml.Unmarshal(b, &gf); err != nil {
		return nil, fmt.Errorf("config: games list: %w", err)
	}

	games := make(map[string]string, len(gf.Games))
	for _, g := range gf.Games {
		games[g.Package] = g.Mode
	}
	log.Info("Games list loaded", "path", path, "games", len(games))
	return games, nil
}
