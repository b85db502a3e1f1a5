package docs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
)

// The description is edited by hand, so a broken template or stray comma must fail here
// rather than at /swagger/doc.json.
func TestSwaggerDocIsValidJSON(t *testing.T) {
	raw, err := swag.ReadDoc(SwaggerInfo.InstanceName())
	require.NoError(t, err)

	var doc struct {
		Swagger  string                     `json:"swagger"`
		BasePath string                     `json:"basePath"`
		Paths    map[string]json.RawMessage `json:"paths"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))

	assert.Equal(t, "2.0", doc.Swagger)
	assert.Equal(t, "/api/v1", doc.BasePath)
	for _, path := range []string{
		"/auth/login",
		"/gameweeks/{gameweek}/chip-validation",
		"/gameweeks/{gameweek}/chip-validation/dismiss",
		"/gameweeks/{gameweek}/chip-sync",
		"/leagues/{leagueID}/standings",
	} {
		assert.Contains(t, doc.Paths, path)
	}
}
