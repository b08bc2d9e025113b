package settings

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Setting is one key/value pair of a configuration.
type Setting struct {
	Key   string
	Value Value
}

// Configuration is one fully specified solver input: an ordered list of
// uniquely keyed settings plus the case name and its reference value.
type Configuration struct {
	Name      string
	Reference float64

	settings []Setting
	index    map[string]int
}

// NewConfiguration creates an empty configuration.
func NewConfiguration(name string, reference float64) *Configuration {
	return &Configuration{
		Name:      name,
		Reference: reference,
		index:     make(map[string]int),
	}
}

// Set stores a setting. An existing key keeps its position and gets the new value.
func (c *Configuration) Set(key string, v Value) {
	if c.index == nil {
		c.index = make(map[string]int)
	}
	if i, ok := c.index[key]; ok {
		c.settings[i].Value = v
		return
	}
	c.index[key] = len(c.settings)
	c.settings = append(c.settings, Setting{Key: key, Value: v})
}

// Get returns the value stored under key.
func (c *Configuration) Get(key string) (Value, bool) {
	i, ok := c.index[key]
	if !ok {
		return Value{}, false
	}
	return c.settings[i].Value, true
}

// Len returns the number of settings.
func (c *Configuration) Len() int {
	return len(c.settings)
}

// Settings returns a copy of the settings in insertion order.
func (c *Configuration) Settings() []Setting {
	out := make([]Setting, len(c.settings))
	copy(out, c.settings)
	return out
}

// Keys returns the setting keys in insertion order.
func (c *Configuration) Keys() []string {
	keys := make([]string, len(c.settings))
	for i, s := range c.settings {
		keys[i] = s.Key
	}
	return keys
}

// Validate checks that every required key is present. Duplicates cannot
// occur through Set, so only missing keys are reported.
func (c *Configuration) Validate(required []string) error {
	var missing []string
	for _, key := range required {
		if _, ok := c.index[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("configuration %q is missing required keys: %s", c.Name, strings.Join(missing, ", "))
	}
	return nil
}

// WriteTo writes the configuration in settings-file form, one
// "KEY = VALUE" line per setting in insertion order.
func (c *Configuration) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, s := range c.settings {
		n, err := fmt.Fprintf(w, "%s = %s\n", s.Key, s.Value.String())
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Encode returns the settings-file form of the configuration.
func (c *Configuration) Encode() []byte {
	var buf bytes.Buffer
	_, _ = c.WriteTo(&buf)
	return buf.Bytes()
}

// ParseSettings reads a settings file. Values are typed by shape: integers,
// then floats, otherwise strings. Blank lines and lines starting with '#'
// are skipped. A repeated key is an error.
func ParseSettings(r io.Reader) (*Configuration, error) {
	cfg := NewConfiguration("", 0)
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, raw, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("line %d: expected KEY = VALUE, got %q", lineNo, line)
		}
		key = strings.TrimSpace(key)
		raw = strings.TrimSpace(raw)
		if key == "" {
			return nil, fmt.Errorf("line %d: empty key", lineNo)
		}
		if _, dup := cfg.Get(key); dup {
			return nil, fmt.Errorf("line %d: duplicate key %q", lineNo, key)
		}
		cfg.Set(key, parseValue(raw))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseValue(raw string) Value {
	if i, err := strconv.Atoi(raw); err == nil {
		return IntValue(i)
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return FloatValue(f)
	}
	return StringValue(raw)
}
