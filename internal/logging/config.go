package logging

import (
	"fmt"
	"os"
	"strings"
)

// RTSPD_LOGLEVEL accepts comma-separated "tag=level" directives, e.g.
// "rtsp=debug,mount=trace" or a single bare level to set the default.
const envVar = "RTSPD_LOGLEVEL"

var tagLevels []struct {
	tag   string
	level Level
}

func init() {
	for _, d := range strings.Split(os.Getenv(envVar), ",") {
		if d == "" {
			continue
		}
		v := strings.SplitN(d, "=", 2)
		levelString := v[len(v)-1]
		if level, err := parseLevel(levelString); err != nil {
			fmt.Fprintf(os.Stderr, "invalid %s directive %q: %s\n", envVar, d, err)
		} else if len(v) == 1 {
			defaultLevel = level
		} else {
			tagLevels = append(tagLevels, struct {
				tag   string
				level Level
			}{v[0], level})
		}
	}

	DefaultLogger.Level = defaultLevel
}

func determineLevel(tag string, fallback Level) Level {
	for _, e := range tagLevels {
		if e.tag == tag {
			return e.level
		}
	}
	return fallback
}
