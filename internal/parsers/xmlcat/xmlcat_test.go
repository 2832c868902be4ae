package xmlcat

import (
	"encoding/xml"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseElement(t *testing.T, payload string) *Element {
	t.Helper()
	var e Element
	require.NoError(t, xml.Unmarshal([]byte(payload), &e))
	return &e
}

func writeFile(t *testing.T, name, payload string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o644))
	return path
}

func TestElementUnmarshal(t *testing.T) {
	e := parseElement(t, `<product>
		<stores><item>default</item><item>de</item></stores>
		<simple_data>
			<sku><default> ABC-1 </default></sku>
		</simple_data>
	</product>`)

	assert.Equal(t, "product", e.Name)
	require.NotNil(t, e.Child("stores"))
	assert.Equal(t, []string{"item", "item"}, e.Child("stores").ChildNames())
	assert.Equal(t, "default", e.Child("stores").Children[0].Value())

	sku := e.Child("simple_data").Child("sku")
	require.NotNil(t, sku)
	assert.Equal(t, "ABC-1", sku.Child("default").Value())
	assert.True(t, e.HasChild("simple_data"))
	assert.False(t, e.HasChild("complex_data"))
	assert.Nil(t, e.Child("missing"))
}

func TestElementValueNilSafe(t *testing.T) {
	var e *Element
	assert.Equal(t, "", e.Value())
	assert.Nil(t, e.Child("x"))
}

func TestValidateFile(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		expected FileValidation
	}{
		{
			name:     "valid file",
			payload:  `<products><product><simple_data/></product></products>`,
			expected: FileOK,
		},
		{
			name:     "wrong root",
			payload:  `<catalog><product/></catalog>`,
			expected: FileNoRootNode,
		},
		{
			name:     "no product nodes",
			payload:  `<products></products>`,
			expected: FileNoProductNodes,
		},
		{
			name:     "syntax error",
			payload:  `<products><product></products>`,
			expected: FileSyntaxError,
		},
		{
			name:     "empty file",
			payload:  ``,
			expected: FileNoRootNode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "catalog.xml", tt.payload)
			result, _ := ValidateFile(path)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestValidateFileSyntaxErrorCarriesLine(t *testing.T) {
	path := writeFile(t, "broken.xml", "<products>\n<product>\n</products>")
	result, messages := ValidateFile(path)
	assert.Equal(t, FileSyntaxError, result)
	require.NotEmpty(t, messages)
	assert.Contains(t, messages[0], "line 3")
}

func TestProductStream(t *testing.T) {
	path := writeFile(t, "catalog.xml", `<products>
		<product><simple_data><sku><default>A</default></sku></simple_data></product>
		<product><simple_data><sku><default>B</default></sku></simple_data></product>
	</products>`)

	stream, err := OpenProductStream(path)
	require.NoError(t, err)
	defer stream.Close()

	var skus []string
	for {
		node, err := stream.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		skus = append(skus, node.Child("simple_data").Child("sku").Child("default").Value())
	}
	assert.Equal(t, []string{"A", "B"}, skus)
}

func TestProductStreamEmptyFile(t *testing.T) {
	path := writeFile(t, "catalog.xml", `<products></products>`)

	stream, err := OpenProductStream(path)
	require.NoError(t, err)
	defer stream.Close()

	_, err = stream.Next()
	assert.Equal(t, io.EOF, err)
}
