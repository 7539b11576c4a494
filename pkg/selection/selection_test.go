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

package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docdist/pkg/document"
)

func testDoc() *document.Document {
	doc := document.New("music:album:42:highway", "album")
	doc.Fields["title"] = "Highway Revisited"
	doc.Fields["plays"] = int64(8)
	doc.Fields["rating"] = 4.5
	doc.Fields["published"] = true
	return doc
}

func mustParse(t *testing.T, expr string) Predicate {
	t.Helper()
	pred, err := Parse(expr)
	require.NoError(t, err)
	return pred
}

func TestComparisons(t *testing.T) {
	doc := testDoc()
	cases := []struct {
		expr string
		want bool
	}{
		{`plays == 8`, true},
		{`plays != 8`, false},
		{`plays > 7`, true},
		{`plays >= 8`, true},
		{`plays < 8`, false},
		{`rating > 4`, true},
		{`title == "Highway Revisited"`, true},
		{`title < "Z"`, true},
		{`published == true`, true},
		{`published != false`, true},
		{`id.user == 42`, true},
		{`id.user == 7`, false},
		{`id.namespace == "music"`, true},
		{`id.name == "highway"`, true},
		{`missing == 1`, false},
		{`missing == null`, true},
		{`plays == null`, false},
		{`plays != null`, true},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, mustParse(t, c.expr).Evaluate(doc), c.expr)
	}
}

func TestBooleanOperators(t *testing.T) {
	doc := testDoc()
	assert.True(t, mustParse(t, `plays == 8 and id.user == 42`).Evaluate(doc))
	assert.False(t, mustParse(t, `plays == 8 and id.user == 7`).Evaluate(doc))
	assert.True(t, mustParse(t, `plays == 9 or rating > 4`).Evaluate(doc))
	assert.True(t, mustParse(t, `not plays == 9`).Evaluate(doc))
	assert.True(t, mustParse(t, `(plays == 9 or plays == 8) and published == true`).Evaluate(doc))
}

func TestTypeMismatchIsFalse(t *testing.T) {
	doc := testDoc()
	assert.False(t, mustParse(t, `title == 8`).Evaluate(doc))
	assert.False(t, mustParse(t, `plays == "8"`).Evaluate(doc))
}

func TestParseErrors(t *testing.T) {
	for _, expr := range []string{
		``,
		`plays ==`,
		`== 8`,
		`plays = 8`,
		`plays == 8 extra`,
		`(plays == 8`,
		`plays !< 8`,
		`@@ not a selection @@`,
	} {
		_, err := Parse(expr)
		assert.Error(t, err, expr)
	}
}

func TestParserWrapper(t *testing.T) {
	p := NewParser()
	pred, err := p.Parse(`id.user == 42`)
	require.NoError(t, err)
	assert.True(t, pred.Evaluate(testDoc()))
}
