package core

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/barysiuk/mcpdesk/internal/core/service"
)

// EnvSource indicates where an env var value was resolved from.
type EnvSource string

const (
	EnvSourceProcess EnvSource = "process"
	EnvSourceFile    EnvSource = "file"
)

// ResolvedEnvVar holds a resolved env var value and its source.
// Source is empty when the variable was not found.
type ResolvedEnvVar struct {
	Name   string
	Value  string
	Source EnvSource
}

// Found reports whether the variable was resolved.
func (r ResolvedEnvVar) Found() bool { return r.Source != "" }

// ResolveToken finds HF_TOKEN. The process environment wins over the env
// file at path.
func ResolveToken(path string) (ResolvedEnvVar, error) {
	return resolveEnvVar(path, service.TokenEnvVar)
}

func resolveEnvVar(path, name string) (ResolvedEnvVar, error) {
	res := ResolvedEnvVar{Name: name}
	if val, ok := os.LookupEnv(name); ok && val != "" {
		res.Value = val
		res.Source = EnvSourceProcess
		return res, nil
	}

	vars, err := readEnvFile(path)
	if err != nil {
		return res, err
	}
	if val, ok := vars[name]; ok && val != "" {
		res.Value = val
		res.Source = EnvSourceFile
	}
	return res, nil
}

// SaveTokenEnv writes HF_TOKEN into the env file at path, keeping any other
// variables already there. The file is only readable by the owner.
func SaveTokenEnv(path, token string) error {
	return writeEnvVar(path, service.TokenEnvVar, token)
}

func writeEnvVar(path, name, value string) error {
	vars, err := readEnvFile(path)
	if err != nil {
		return err
	}
	if vars == nil {
		vars = make(map[string]string)
	}
	vars[name] = value

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	tmpPath := path + ".tmp"
	if err := godotenv.Write(vars, tmpPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("writing env file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o600); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("restricting env file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("saving env file: %w", err)
	}
	return nil
}

// readEnvFile returns nil without error when the file does not exist.
func readEnvFile(path string) (map[string]string, error) {
	vars, err := godotenv.Read(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return vars, nil
}
