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

// Package balancer wires the framing codec, splicer, and service
// registry into the front-end load balancer described by the data
// model: one listening socket multiplexing client connections across a
// fixed pool of back-end services under a selection policy.
package balancer

import (
	"github.com/zhangjinde/cerver/duration"
	sckcfg "github.com/zhangjinde/cerver/socket/config"
)

// Policy names a selection policy. ROUND_ROBIN is the only one
// implemented; the type exists so a future policy doesn't change the
// Config shape.
type Policy string

// RoundRobin is the reference (and currently only) selection policy.
const RoundRobin Policy = "ROUND_ROBIN"

// ServiceConfig describes one back-end to register before Start.
type ServiceConfig struct {
	Address       string            `mapstructure:"address" json:"address" yaml:"address" toml:"address"`
	Port          int               `mapstructure:"port" json:"port" yaml:"port" toml:"port"`
	Name          string            `mapstructure:"name" json:"name" yaml:"name" toml:"name"`
	ReconnectWait duration.Duration `mapstructure:"reconnectWait" json:"reconnectWait" yaml:"reconnectWait" toml:"reconnectWait"`
}

// Config is the balancer's full construction-time configuration: name,
// policy tag, listening socket, and the fixed set of back-ends (§6,
// "Configuration"). Unlike most of this module's other config structs,
// it is not meant to be reloaded at runtime — n_services and the
// listening port are fixed for the balancer's lifetime.
type Config struct {
	Name     string          `mapstructure:"name" json:"name" yaml:"name" toml:"name"`
	Policy   Policy          `mapstructure:"policy" json:"policy" yaml:"policy" toml:"policy"`
	Listen   sckcfg.Config   `mapstructure:"listen" json:"listen" yaml:"listen" toml:"listen"`
	Services []ServiceConfig `mapstructure:"services" json:"services" yaml:"services" toml:"services"`

	// RequireAllWorking, if true, makes Start fail unless every
	// registered service reaches WORKING (§4.4 documents the reference
	// policy, "require >=1 WORKING", as the default; this is the
	// documented knob to tighten it).
	RequireAllWorking bool `mapstructure:"requireAllWorking" json:"requireAllWorking" yaml:"requireAllWorking" toml:"requireAllWorking"`
}

// Validate checks the configuration is internally consistent enough to
// attempt Start: a non-empty listen address and at least one configured
// service.
func (c Config) Validate() error {
	if err := c.Listen.Validate(); err != nil {
		return err
	}
	if len(c.Services) == 0 {
		return ErrNoWorkingService.Error(nil)
	}
	return nil
}
