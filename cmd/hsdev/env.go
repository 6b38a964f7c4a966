// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"maps"
	"slices"

	"github.com/joho/godotenv"
)

// loadEnvFiles reads dotenv files in order; later files override earlier
// ones. The result is sorted KEY=VALUE pairs for the child environment.
func loadEnvFiles(paths []string) ([]string, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	merged := make(map[string]string)
	for _, path := range paths {
		vars, err := godotenv.Read(path)
		if err != nil {
			return nil, fmt.Errorf("read env file %s: %w", path, err)
		}
		maps.Copy(merged, vars)
	}
	env := make([]string, 0, len(merged))
	for _, key := range slices.Sorted(maps.Keys(merged)) {
		env = append(env, key+"="+merged[key])
	}
	return env, nil
}
