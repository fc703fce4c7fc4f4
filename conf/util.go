package conf

import (
	"encoding/json"
	"io/ioutil"
	"os"
	fpath "path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

const unknownFileExtErrMessage = "Unknown configuration file extension[%s]. Only \".json\", \".yml(.yaml)\" and \".toml\" types are allowed."

func checkFileExtension(filepath string) error {

	extension := fpath.Ext(strings.ToLower(filepath))

	switch extension {
	case ".json", ".yml", ".yaml", ".toml":
		return nil
	default:
		return errors.Errorf(unknownFileExtErrMessage, extension)
	}
}

func readFile(filepath string) (*Configuration, error) {

	file, err := ioutil.ReadFile(filepath)
	if err != nil {
		return nil, err
	}

	configuration := &Configuration{}
	extension := fpath.Ext(strings.ToLower(filepath))

	switch extension {
	case ".json":
		err = json.Unmarshal(file, configuration)
	case ".yml", ".yaml":
		err = yaml.Unmarshal(file, configuration)
	case ".toml":
		err = toml.Unmarshal(file, configuration)
	default:
		return nil, errors.Errorf(unknownFileExtErrMessage, extension)
	}

	if err != nil {
		return nil, errors.Wrapf(err, "Configuration file[%s] could not be parsed", filepath)
	}
	return configuration, nil
}

func homeDir() string {
	if runtime.GOOS == "windows" {
		return os.Getenv("USERPROFILE")
	}
	return os.Getenv("HOME")
}

func addHomeDirPrefix(filepath string) string {
	if filepath == "" {
		return filepath
	}

	tildePrefix := "~" + string(os.PathSeparator)

	if strings.HasPrefix(filepath, tildePrefix) {
		return fpath.Join(homeDir(), strings.TrimPrefix(filepath, tildePrefix))
	}

	return fpath.Clean(filepath)
}

// LogFilepath is where the rotating log file lives.
func LogFilepath() string {
	return addHomeDirPrefix(fpath.Join("~", ".mq", "mq.log"))
}

func PrepareLogFormat() logrus.Formatter {
	formatType := strings.ToLower(os.Getenv("MQ_LOG_FORMAT_TYPE"))
	switch formatType {
	case "text":
		return &logrus.TextFormatter{
			DisableColors:   true,
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339Nano,
		}
	case "json":
		return &logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
		}
	case "colored":
		fallthrough
	default:
		return &logrus.TextFormatter{
			ForceColors:            true,
			FullTimestamp:          true,
			TimestampFormat:        time.RFC3339Nano,
			DisableLevelTruncation: true,
		}
	}
}
