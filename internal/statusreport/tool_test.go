package statusreport

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToolDefinition(t *testing.T) {
	def := setupTestBuilder().Tool()

	assert.Equal(t, "create_tavant_status_report", def.Name)
	require.NotNil(t, def.InputSchema)
	assert.Equal(t, "object", def.InputSchema.Type)
	assert.ElementsMatch(t, []string{"project_name", "period_label", "accomplishments"}, def.InputSchema.Required)
	assert.Len(t, def.InputSchema.Properties, 9)
	assert.Equal(t, "Name of the project", def.InputSchema.Properties["project_name"].Description)

	risks := def.InputSchema.Properties["risks"]
	require.NotNil(t, risks.Items)
	assert.Equal(t, "array", risks.Type)
	assert.Contains(t, risks.Items.Properties, "target_date")
	assert.Contains(t, risks.Items.Properties, "status")
	assert.Empty(t, risks.Items.Required)

	raw, err := json.Marshal(def)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"inputSchema"`)
	assert.Contains(t, string(raw), `"required":["project_name","period_label","accomplishments"]`)
}

func TestToolDefinitionIsACopy(t *testing.T) {
	b := setupTestBuilder()
	def := b.Tool()
	def.InputSchema.Required = nil

	assert.Len(t, b.Tool().InputSchema.Required, 3)
}

func TestToolNameFollowsBrand(t *testing.T) {
	brand, err := NewBrand("ACME", "", "")
	require.NoError(t, err)

	tools := NewBuilder(brand, nil).Tools()
	require.Len(t, tools, 1)
	assert.Equal(t, "create_acme_status_report", tools[0].Name)
}

func TestInvoke(t *testing.T) {
	b := setupTestBuilder()
	out := filepath.Join(t.TempDir(), "wsr.pptx")

	args, err := json.Marshal(map[string]any{
		"project_name":    "Apollo",
		"period_label":    "Week Ending Dec 13, 2025",
		"accomplishments": []string{"Shipped login"},
		"risks": []map[string]string{
			{"description": "Vendor delay", "owner": "Lee", "target_date": "Dec 20", "status": "Open"},
			{"description": "Owner unknown"},
		},
		"output_path": out,
	})
	require.NoError(t, err)

	res := Invoke(b, args)
	require.True(t, res.Success, res.Error)
	assert.Equal(t, out, res.FilePath)
	assert.Equal(t, 4, res.SlidesCreated)
	assert.Equal(t, "Tavant Status Report created successfully", res.Message)
	assert.FileExists(t, out)
}

func TestInvokeRejectsInvalidArguments(t *testing.T) {
	tests := []struct {
		name string
		args string
	}{
		{"malformed", `{"project_name": 42`},
		{"empty object", `{}`},
		{"missing accomplishments", `{"project_name": "Apollo", "period_label": "W50"}`},
		{"wrong type", `{"project_name": "Apollo", "period_label": "W50", "accomplishments": "Shipped"}`},
		{"unknown field", `{"project_name": "Apollo", "period_label": "W50", "accomplishments": [], "owner": "Lee"}`},
		{"not an object", `null`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Invoke(setupTestBuilder(), json.RawMessage(tt.args))

			assert.False(t, res.Success)
			assert.Contains(t, res.Error, "invalid arguments")
			assert.Empty(t, res.FilePath)
		})
	}
}

func TestDecodeRequest(t *testing.T) {
	req, err := DecodeRequest([]byte(`{"project_name": "Apollo", "period_label": "W50", "accomplishments": [],
		"milestones": [{"description": "Beta", "status": "On track"}]}`))
	require.NoError(t, err)

	assert.Equal(t, "Apollo", req.ProjectName)
	require.Len(t, req.Milestones, 1)
	assert.Equal(t, "Beta", req.Milestones[0].Description)
	assert.Empty(t, req.Milestones[0].TargetDate)
}

func TestResultJSON(t *testing.T) {
	raw, err := json.Marshal(Failed(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success": false, "error": "build failed"}`, string(raw))

	raw, err = json.Marshal(DefaultBrand().Succeeded("a.pptx", 4))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success": true, "file_path": "a.pptx", "slides_created": 4, "message": "Tavant Status Report created successfully"}`, string(raw))
}
