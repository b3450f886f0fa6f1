package config

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// legacyDictionary renames historical server.cfg keys to the keyspace
// Config exposes, ported from the original LegacyConfig component's
// `dictionary` table (Server/Components/LegacyConfig/config_main.cpp).
var legacyDictionary = map[string]string{
	"rcon":             "enable_rcon",
	"rcon_password":    "rcon_password",
	"gamemode":         "pawn.main_scripts",
	"filterscripts":    "pawn.side_scripts",
	"plugins":          "pawn.legacy_plugins",
	"announce":         "announce",
	"query":            "enable_query",
	"maxplayers":       "max_players",
	"bind":             "bind",
	"port":             "port",
	"playertimeout":    "player_timeout",
	"onfoot_rate":      "on_foot_rate",
	"incar_rate":       "in_car_rate",
	"weapon_rate":      "weapon_rate",
	"stream_distance":  "stream_distance",
	"stream_rate":      "stream_rate",
}

// legacyObsolete is the set of keys the original format still accepts
// but which no longer affect behavior; they are warned about and
// skipped (error taxonomy category 5: "unknown legacy key: warn and
// skip").
var legacyObsolete = map[string]bool{
	"worldtime":   true,
	"conncookies": true,
	"output":      true,
}

// LoadLegacy reads a historical server.cfg-format stream (one
// "key value..." pair per line, '#'-prefixed comments) and applies it
// onto cfg. Unknown keys and obsolete keys are both logged at Warn and
// skipped, per spec.md §7 category 5.
func LoadLegacy(r io.Reader, cfg *Config, logger *logrus.Entry) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.SplitN(line, " ", 2)
		name := fields[0]
		value := ""
		if len(fields) == 2 {
			value = strings.TrimSpace(fields[1])
		}

		if legacyObsolete[name] {
			if logger != nil {
				logger.WithField("key", name).Warn("ignoring obsolete legacy config key")
			}
			continue
		}

		if strings.HasPrefix(name, "gamemode") && name != "gamemode" {
			// processCustom's gamemode<N> ambiguity (spec.md §9 Open
			// Question) is out of scope here: this module has no
			// scripting layer to feed additional gamemode slots to.
			if logger != nil {
				logger.WithField("key", name).Warn("indexed gamemode<N> keys are not supported; only the base gamemode key is applied")
			}
			continue
		}

		newKey, ok := legacyDictionary[name]
		if !ok {
			if logger != nil {
				logger.WithField("key", name).Warn("unknown legacy config key, skipping")
			}
			continue
		}

		applyLegacyValue(cfg, newKey, value, logger)
	}
	return scanner.Err()
}

func applyLegacyValue(cfg *Config, key, value string, logger *logrus.Entry) {
	switch key {
	case "bind":
		cfg.Bind = value
	case "port":
		if v, err := strconv.Atoi(value); err == nil {
			cfg.Port = v
		} else {
			warnBadValue(logger, key, value)
		}
	case "max_players":
		if v, err := strconv.Atoi(value); err == nil {
			cfg.MaxPlayers = v
		} else {
			warnBadValue(logger, key, value)
		}
	case "stream_distance":
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			cfg.StreamDistance = v
		} else {
			warnBadValue(logger, key, value)
		}
	case "stream_rate":
		if v, err := strconv.ParseInt(value, 10, 64); err == nil {
			cfg.StreamRateMS = v
		} else {
			warnBadValue(logger, key, value)
		}
	case "on_foot_rate":
		if v, err := strconv.ParseInt(value, 10, 64); err == nil {
			cfg.OnFootRateMS = v
		} else {
			warnBadValue(logger, key, value)
		}
	case "in_car_rate":
		if v, err := strconv.ParseInt(value, 10, 64); err == nil {
			cfg.InCarRateMS = v
		} else {
			warnBadValue(logger, key, value)
		}
	case "weapon_rate":
		if v, err := strconv.ParseInt(value, 10, 64); err == nil {
			cfg.WeaponRateMS = v
		} else {
			warnBadValue(logger, key, value)
		}
	case "player_timeout":
		if v, err := strconv.ParseInt(value, 10, 64); err == nil {
			cfg.PlayerTimeout = time.Duration(v) * time.Millisecond
		} else {
			warnBadValue(logger, key, value)
		}
	case "announce":
		cfg.Announce = value == "1"
	case "enable_query":
		cfg.EnableQuery = value == "1"
	case "enable_rcon":
		cfg.EnableRCON = value == "1"
	case "rcon_password":
		cfg.RCONPassword = value
	case "pawn.main_scripts":
		cfg.PawnMainScripts = append(cfg.PawnMainScripts, value)
	case "pawn.side_scripts":
		cfg.PawnSideScripts = append(cfg.PawnSideScripts, strings.Fields(value)...)
	case "pawn.legacy_plugins":
		cfg.PawnLegacyPlugins = append(cfg.PawnLegacyPlugins, strings.Fields(value)...)
	}
}

func warnBadValue(logger *logrus.Entry, key, value string) {
	if logger != nil {
		logger.WithField("key", key).WithField("value", value).Warn("malformed legacy config value, keeping default")
	}
}
