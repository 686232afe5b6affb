package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

const envPrefix = "CALENDARMEET_"

type Application struct {
	Host     string   `koanf:"host"`
	Port     int      `koanf:"port"`
	Frontend Frontend `koanf:"frontend"`
	Cors     Cors     `koanf:"cors"`
	Google   Google   `koanf:"google"`
	Database Database `koanf:"db"`
}

type Frontend struct {
	Enabled bool   `koanf:"enabled"`
	Dir     string `koanf:"dir"`
}

type Cors struct {
	AllowedOrigins []string `koanf:"allowedorigins"`
}

// Google configures the free/busy integration. It stays disabled while
// CredentialsFile is empty.
type Google struct {
	CredentialsFile string `koanf:"credentialsfile"`
}

type Database struct {
	Host   string `koanf:"host"`
	Port   int    `koanf:"port"`
	User   string `koanf:"user"`
	Pass   string `koanf:"pass"`
	Name   string `koanf:"name"`
	Schema string `koanf:"schema"`
}

func Load(path string) (Application, error) {
	if err := godotenv.Load(); err != nil {
		if os.IsNotExist(err) {
			log.Debug("No .env file found")
		} else {
			log.Errorf("error loading .env file: %v", err)
			return Application{}, err
		}
	}

	var k = koanf.New(".")

	err := k.Load(structs.Provider(Application{
		Host: "http://localhost:5173",
		Port: 4000,
		Frontend: Frontend{
			Enabled: true,
			Dir:     "./frontend/dist",
		},
		Cors: Cors{
			AllowedOrigins: []string{"http://localhost:5173"},
		},
		Database: Database{
			Host:   "localhost",
			Port:   5432,
			User:   "calendarmeet",
			Pass:   "",
			Name:   "calendarmeet",
			Schema: "calendarmeet",
		},
	}, "koanf"), nil)
	if err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if os.IsNotExist(err) {
			log.Infof("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Errorf("error loading config from YAML: %v", err)
			return Application{}, err
		}
	} else {
		log.Infof("Loaded configuration from file: %s", path)
	}

	err = k.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(k, v string) (string, any) {
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, envPrefix)), "_", ".")
			return k, v
		},
	}), nil)
	if err != nil {
		log.Errorf("error loading config from envs: %v", err)
		return Application{}, err
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, err
	}
	app.Cors.AllowedOrigins = splitOrigins(app.Cors.AllowedOrigins)

	return app, nil
}

// splitOrigins accepts origins given one per entry (YAML) or comma separated
// in a single entry (environment).
func splitOrigins(values []string) []string {
	origins := make([]string, 0, len(values))
	for _, value := range values {
		for _, origin := range strings.Split(value, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				origins = append(origins, origin)
			}
		}
	}
	return origins
}
