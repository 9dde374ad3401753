/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
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

// Package config declares the configuration accepted by socket servers
// (currently server/tcp), with viper/mapstructure tags so it can be
// loaded the same way as the rest of this module's configuration.
package config

import (
	"github.com/zhangjinde/cerver/duration"
	"github.com/zhangjinde/cerver/network/protocol"
)

// Config configures one socket server listener.
type Config struct {
	// Network is the protocol passed to net.Listen ("tcp", "tcp4", "tcp6").
	Network string `mapstructure:"network" json:"network" yaml:"network" toml:"network"`
	// Address is the "host:port" the listener binds to.
	Address string `mapstructure:"address" json:"address" yaml:"address" toml:"address"`
	// Backlog is the accept queue length hint passed to the listener.
	Backlog int `mapstructure:"backlog" json:"backlog" yaml:"backlog" toml:"backlog"`
	// ConIdleTimeout is an idle limit for a connection. It is only
	// carried in the configuration: server/tcp does not read it and
	// closes no connection for being idle.
	ConIdleTimeout duration.Duration `mapstructure:"conIdleTimeout" json:"conIdleTimeout" yaml:"conIdleTimeout" toml:"conIdleTimeout"`
}

// Validate reports whether the configuration is usable by server/tcp.New.
func (c Config) Validate() error {
	if c.Address == "" {
		return ErrEmptyAddress
	}
	if !protocol.Parse(c.Network).IsTcp() {
		return ErrUnsupportedNetwork
	}
	return nil
}

// DefaultBacklog is used when Config.Backlog is zero or negative.
const DefaultBacklog = 128
