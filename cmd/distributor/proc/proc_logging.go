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

package proc

import (
	"github.com/golang/glog"
)

var (
	LOG_DEBUG   glog.Verbose
	LOG_VERBOSE glog.Verbose
)

// SetLogLevel latches the verbosity gates once flags are parsed; the
// per-reply paths check the package vars instead of calling glog.V on
// every message.
func SetLogLevel() {
	LOG_DEBUG = glog.V(4)
	LOG_VERBOSE = glog.V(5)
}

const (
	kOpCancelled   = "cancelled by distributor"
	kOpAborted     = "distributor shutting down"
	kFeedBlocked   = "feed blocked"
	kLostOwnership = "bucket ownership changed during the operation"
	kSeqConflict   = "another update for the document is in flight"
)
