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

package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/golang/glog"

	"docdist/cmd/distributor/app"
	"docdist/cmd/distributor/config"
	"docdist/pkg/selection"
)

func main() {
	var configFile string
	flag.StringVar(&configFile, "config", "", "specify the config file")
	flag.Parse()

	if configFile != "" {
		if err := config.LoadConfig(configFile); err != nil {
			glog.Exitf("%s", err)
		}
	}
	config.Conf.Dump()

	// the outbound storage transport is injected by the enclosing
	// deployment; standalone processes come up with a transport that
	// refuses every send
	d := app.New(app.NullTransport(), selection.NewParser())
	if err := d.Start(); err != nil {
		glog.Exitf("failed to start distributor: %s", err)
	}

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch
	glog.Infof("shutting down")
	d.Shutdown()
	glog.Flush()
}
