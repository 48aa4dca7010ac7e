package workspace

import (
	"sort"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/pescuma/hgblame/lib/importers/hg"
	"github.com/pescuma/hgblame/lib/utils"
)

const (
	ConfigHgExecutable = "hg.executable"
	ConfigHgTimeout    = "hg.timeout"
	ConfigBlameWorkers = "blame.workers"
)

var configValidators = map[string]func(string) error{
	ConfigHgExecutable: func(v string) error {
		if v == "" {
			return errors.New("can't be empty")
		}
		return nil
	},
	ConfigHgTimeout: func(v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		if d <= 0 {
			return errors.New("must be positive")
		}
		return nil
	},
	ConfigBlameWorkers: func(v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		if n <= 0 {
			return errors.New("must be positive")
		}
		return nil
	},
}

func ConfigKeys() []string {
	keys := lo.Keys(configValidators)
	sort.Strings(keys)
	return keys
}

// Config is the persisted configuration of the workspace.
type Config struct {
	values map[string]string
}

func (c *Config) Get(key string) (string, bool) {
	v, ok := c.values[key]
	return v, ok
}

func (c *Config) Executable() string {
	return utils.Coalesce(c.values[ConfigHgExecutable], hg.DefaultExecutable)
}

func (c *Config) Timeout() (time.Duration, error) {
	v, ok := c.values[ConfigHgTimeout]
	if !ok {
		return hg.DefaultTimeout, nil
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid %v", ConfigHgTimeout)
	}
	return d, nil
}

func (c *Config) Workers() (int, error) {
	v, ok := c.values[ConfigBlameWorkers]
	if !ok {
		return utils.DefaultRoutines(), nil
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid %v", ConfigBlameWorkers)
	}
	return n, nil
}

// ApplyTo fills the options that were not set from the command line.
func (c *Config) ApplyTo(opts hg.BlameOptions) (hg.BlameOptions, error) {
	if opts.Executable == "" {
		opts.Executable = c.Executable()
	}

	if opts.Timeout <= 0 {
		timeout, err := c.Timeout()
		if err != nil {
			return opts, err
		}
		opts.Timeout = timeout
	}

	if opts.Workers <= 0 {
		workers, err := c.Workers()
		if err != nil {
			return opts, err
		}
		opts.Workers = workers
	}

	return opts, nil
}

func (w *Workspace) LoadConfig() (*Config, error) {
	cfg, err := w.storage.LoadConfig()
	if err != nil {
		return nil, err
	}

	return &Config{values: *cfg}, nil
}

// SetConfigParameter returns false if the value was already set.
func (w *Workspace) SetConfigParameter(key string, value string) (bool, error) {
	validate, ok := configValidators[key]
	if !ok {
		return false, errors.Errorf("unknown config: %v (known: %v)", key, ConfigKeys())
	}

	err := validate(value)
	if err != nil {
		return false, errors.Wrapf(err, "invalid value for %v: '%v'", key, value)
	}

	cfg, err := w.storage.LoadConfig()
	if err != nil {
		return false, err
	}

	if v, ok := (*cfg)[key]; ok && v == value {
		return false, nil
	}

	(*cfg)[key] = value

	return true, w.storage.WriteConfig()
}

func (w *Workspace) UnsetConfigParameter(key string) (bool, error) {
	cfg, err := w.storage.LoadConfig()
	if err != nil {
		return false, err
	}

	if _, ok := (*cfg)[key]; !ok {
		return false, nil
	}

	delete(*cfg, key)

	return true, w.storage.WriteConfig()
}
