/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package config loads the balancer's construction-time configuration
// (§6, "Configuration") from a file, environment variables, or both,
// using spf13/viper the same way the wider module loads every other
// component's configuration.
package config

import (
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/zhangjinde/cerver/balancer"
	"github.com/zhangjinde/cerver/logger/level"
)

// Root is the top-level configuration document: the balancer's own
// settings plus the ambient logging level. It is not meant to be
// reloaded at runtime (§6 is explicit that n_services and the listening
// port are fixed for the balancer's lifetime), so no watch/reload hook
// is wired here, unlike most of the module's other viper-backed
// components.
type Root struct {
	LogLevel string          `mapstructure:"logLevel"`
	Balancer balancer.Config `mapstructure:"balancer"`
}

// Load reads a Root configuration from path (any format viper supports:
// yaml, json, toml, ...) and from CERVER_-prefixed environment
// variables, which take precedence over the file.
func Load(path string) (Root, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetEnvPrefix("CERVER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("logLevel", "info")
	v.SetDefault("balancer.policy", string(balancer.RoundRobin))
	v.SetDefault("balancer.listen.network", "tcp")

	if err := v.ReadInConfig(); err != nil {
		return Root{}, err
	}

	var root Root
	hook := mapstructure.ComposeDecodeHookFunc(
		mapstructure.TextUnmarshallerHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)
	if err := v.Unmarshal(&root, viper.DecodeHook(hook)); err != nil {
		return Root{}, err
	}
	return root, nil
}

// Level parses the configured log level, defaulting to Info on an
// unrecognized value. An empty value parses to NilLevel; Load fills an
// unset logLevel with "info".
func (r Root) Level() level.Level {
	return level.Parse(r.LogLevel)
}
