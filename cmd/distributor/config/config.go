//
//  Copyright 2023 PayPal Inc.
//
//  Licensed to the Apache Software Foundation (ASF) under one or more
//  contributor license agreements.  See the NOTICE file distributed with
//  this work for additional information regarding copyright ownership.
//  The ASF licenses this file to You under the Apache License, Version 2.0
//  (the "License"); you may not use this file except in compliance with
//  the License.  You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
//  Unless required by applicable law or agreed to in writing, software
//  distributed under the License is distributed on an "AS IS" BASIS,
//  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//  See the License for the specific language governing permissions and
//  limitations under the License.
//

package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/golang/glog"

	"docdist/pkg/clustermap"
	"docdist/pkg/util"
)

var Conf = Config{
	DistributorIndex: 0,
	NumStripes:       4,
	MaxDocIdLength:   1024,

	UseMetadataGetPhase: true,
	ForceSafePath:       false,

	HttpMonAddr: "",
	LogLevel:    "info",

	ReqProc: ReqProcConfig{
		SubOpTimeout: util.Duration{Duration: 100 * time.Millisecond},
	},
	ClusterMap: clustermap.DefaultConfig,
}

type ReqProcConfig struct {
	SubOpTimeout util.Duration
}

type Config struct {
	DistributorIndex uint16
	NumStripes       int
	MaxDocIdLength   int

	// UseMetadataGetPhase turns the cheap metadata fetch phase of the
	// safe path on; when off the safe path issues a full get directly.
	UseMetadataGetPhase bool
	// ForceSafePath disables the direct-update path regardless of
	// replica consistency.
	ForceSafePath bool

	HttpMonAddr string
	LogLevel    string

	ReqProc    ReqProcConfig
	ClusterMap clustermap.Config
}

func LoadConfig(path string) error {
	if _, err := toml.DecodeFile(path, &Conf); err != nil {
		return fmt.Errorf("failed to load config %s: %s", path, err)
	}
	return Conf.Validate()
}

func (c *Config) Validate() error {
	if c.NumStripes <= 0 {
		return fmt.Errorf("NumStripes must be positive")
	}
	if c.ReqProc.SubOpTimeout.Duration <= 0 {
		return fmt.Errorf("SubOpTimeout must be positive")
	}
	if c.MaxDocIdLength <= 0 {
		return fmt.Errorf("MaxDocIdLength must be positive")
	}
	return nil
}

func (c *Config) Dump() {
	var b []byte
	buf := &tomlBuffer{}
	if err := toml.NewEncoder(buf).Encode(*c); err == nil {
		b = buf.data
	}
	glog.Infof("config:\n%s", string(b))
}

type tomlBuffer struct {
	data []byte
}

func (b *tomlBuffer) Write(p []byte) (int, error) {
	b.data = append(b.data, p...)
	return len(p), nil
}
