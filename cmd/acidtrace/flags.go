package main

import (
	"fmt"
	"strings"
)

// knobList collects repeated -knob name=value flags.
type knobList [][2]string

func (k *knobList) String() string {
	parts := make([]string, len(*k))
	for i, kv := range *k {
		parts[i] = kv[0] + "=" + kv[1]
	}

	return strings.Join(parts, ",")
}

func (k *knobList) Set(v string) error {
	name, value, ok := strings.Cut(v, "=")
	if !ok || name == "" {
		return fmt.Errorf("want name=value: %q", v)
	}

	*k = append(*k, [2]string{strings.TrimSpace(name), strings.TrimSpace(value)})

	return nil
}
