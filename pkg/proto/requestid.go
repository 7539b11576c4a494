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

package proto

import (
	"encoding/hex"

	uuid "github.com/satori/go.uuid"
)

// RequestId identifies a client request or an outbound sub-command. Each
// sub-command gets its own id so that replies can be matched against the
// operation's sent-message map.
type RequestId [16]byte

func NewRequestId() (rid RequestId) {
	id := uuid.NewV1()
	copy(rid[:], id.Bytes())
	return
}

func (rid RequestId) IsSet() bool {
	return rid != RequestId{}
}

func (rid RequestId) Equal(other RequestId) bool {
	return rid == other
}

func (rid RequestId) String() string {
	return hex.EncodeToString(rid[:])
}
