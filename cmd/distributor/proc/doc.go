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

// Package proc implements the distributor's update operation: a state
// machine that applies one client update consistently across the
// replica set of the document's bucket and emits a single reply.
//
// Send states:
//
//	NONE_SENT          -> UPDATES_SENT | METADATA_GETS_SENT | FULL_GETS_SENT | PUTS_SENT | terminal
//	METADATA_GETS_SENT -> SINGLE_GET_SENT | PUTS_SENT | UPDATES_SENT (restart) | terminal
//	SINGLE_GET_SENT    -> PUTS_SENT | terminal
//	FULL_GETS_SENT     -> PUTS_SENT | terminal
//	UPDATES_SENT       -> terminal
//	PUTS_SENT          -> terminal
//
// The direct-update path is taken when every replica of the bucket
// carries the same document count and checksum; otherwise the operation
// reads the newest copy, applies the mutations locally and rewrites the
// document everywhere. A metadata pre-phase can upgrade back to direct
// updates when all copies turn out to hold the same document version.
//
// Operations run on a single distributor stripe: Start, Receive,
// Cancel and Close are called serially and never block, so no locking
// is needed inside an operation.
package proc
