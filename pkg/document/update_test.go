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

package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdParse(t *testing.T) {
	p, err := Id("music:album:42:highway").Parse()
	require.NoError(t, err)
	assert.Equal(t, "music", p.Namespace)
	assert.Equal(t, "album", p.DocType)
	assert.True(t, p.HasUser)
	assert.EqualValues(t, 42, p.User)
	assert.Equal(t, "highway", p.Name)

	p, err = Id("music:album::name:with:colons").Parse()
	require.NoError(t, err)
	assert.False(t, p.HasUser)
	assert.Equal(t, "name:with:colons", p.Name)

	_, err = Id("too:few").Parse()
	assert.Error(t, err)
	_, err = Id("music:album:notanumber:x").Parse()
	assert.Error(t, err)
}

func TestApplyMutationsInOrder(t *testing.T) {
	doc := New("music:album:42:highway", "album")
	doc.Fields["plays"] = int64(7)

	u := &Update{
		DocId:   doc.Id,
		DocType: "album",
		Mutations: []Mutation{
			{Op: MutationAssign, Field: "title", Value: "First"},
			{Op: MutationAssign, Field: "title", Value: "Second"},
			{Op: MutationIncrement, Field: "plays", Value: int64(2)},
			{Op: MutationIncrement, Field: "plays", Value: int64(1)},
			{Op: MutationClear, Field: "stale"},
		},
	}
	require.NoError(t, u.ApplyTo(doc))
	assert.Equal(t, "Second", doc.Fields["title"])
	assert.Equal(t, int64(10), doc.Fields["plays"])
	_, exists := doc.Fields["stale"]
	assert.False(t, exists)
}

func TestIncrementOnMissingFieldSeedsValue(t *testing.T) {
	doc := New("music:album:42:highway", "album")
	u := &Update{Mutations: []Mutation{{Op: MutationIncrement, Field: "plays", Value: int64(3)}}}
	require.NoError(t, u.ApplyTo(doc))
	assert.Equal(t, int64(3), doc.Fields["plays"])
}

func TestIncrementErrors(t *testing.T) {
	doc := New("music:album:42:highway", "album")
	doc.Fields["title"] = "text"

	u := &Update{Mutations: []Mutation{{Op: MutationIncrement, Field: "title", Value: int64(1)}}}
	assert.Error(t, u.ApplyTo(doc))

	u = &Update{Mutations: []Mutation{{Op: MutationIncrement, Field: "plays", Value: "one"}}}
	assert.Error(t, u.ApplyTo(doc))
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	doc := New("music:album:42:highway", "album")
	doc.Fields["title"] = "Highway Revisited"
	doc.Fields["plays"] = int64(8)
	doc.Fields["rating"] = 4.5
	doc.Fields["published"] = true

	payload, err := Encode(doc)
	require.NoError(t, err)

	decoded, err := Decode(payload)
	require.NoError(t, err)
	assert.True(t, doc.Equal(decoded), "decoded document must preserve field types")

	_, err = Decode([]byte("not snappy"))
	assert.Error(t, err)
}

func TestFieldPathResolution(t *testing.T) {
	doc := New("music:album:42:highway", "album")
	doc.Fields["plays"] = int64(8)

	v, ok := doc.Field("plays")
	require.True(t, ok)
	assert.Equal(t, int64(8), v)

	v, ok = doc.Field("id.user")
	require.True(t, ok)
	assert.Equal(t, int64(42), v)

	_, ok = doc.Field("id.unknown")
	assert.False(t, ok)
	_, ok = doc.Field("absent")
	assert.False(t, ok)
}
