// Package envfile loads KEY=value pairs from a .env file into the process
// environment without overriding variables that are already set.
package envfile

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"
)

type Result struct {
	Path   string
	Loaded bool
	Keys   int
	Err    error
}

// Load uses NOTECHAT_ENV_PATH when set, else the nearest .env at or above start.
func Load(start string) Result {
	if override := strings.TrimSpace(os.Getenv("NOTECHAT_ENV_PATH")); override != "" {
		return LoadPath(override)
	}
	if start == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return Result{Err: err}
		}
		start = cwd
	}
	path := findUpwards(start, ".env")
	if path == "" {
		return Result{}
	}
	return LoadPath(path)
}

func LoadPath(path string) Result {
	res := Result{Path: path}
	file, err := os.Open(path)
	if err != nil {
		res.Err = err
		return res
	}
	defer file.Close()
	res.Loaded = true
	pairs, order, err := Parse(file)
	if err != nil {
		res.Err = err
		return res
	}
	for _, key := range order {
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		if err := os.Setenv(key, pairs[key]); err != nil {
			res.Err = err
			return res
		}
		res.Keys++
	}
	return res
}

// Parse reads dotenv syntax. Later assignments of the same key win; order
// records first appearance.
func Parse(r io.Reader) (map[string]string, []string, error) {
	pairs := map[string]string{}
	var order []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		key, value, ok := strings.Cut(line, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			continue
		}
		if _, seen := pairs[key]; !seen {
			order = append(order, key)
		}
		pairs[key] = unquote(strings.TrimSpace(value))
	}
	return pairs, order, scanner.Err()
}

func unquote(value string) string {
	if len(value) < 2 {
		return value
	}
	first, last := value[0], value[len(value)-1]
	if first == last && (first == '"' || first == '\'') {
		return value[1 : len(value)-1]
	}
	return value
}

func findUpwards(start, filename string) string {
	dir := start
	for {
		candidate := filepath.Join(dir, filename)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
