package module_contract_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/initr/internal/app"
	"github.com/vk/initr/internal/initr"
	"github.com/vk/initr/internal/registry"
	"github.com/vk/initr/internal/testutil"
	"github.com/vk/initr/modules/attrs"
	"github.com/vk/initr/modules/print"
)

const page = `<html><body>
  <div class="slider" id="s1" data-type="wide"></div>
  <div class="slider" id="s2"></div>
  <div class="slider" id="s3"></div>
</body></html>`

// TestModuleContract_VariantsSplitElements checks that variant elements get
// their merged configuration and the rest get the defaults.
func TestModuleContract_VariantsSplitElements(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	manifest := `
        dependency "slider" {
            selector = ".slider"
            type     = "element-plugin"
            done     = "RecordDone"
            defaults = {
                speed = 3
                loop  = true
            }
            variant "wide" {
                config = { speed = 5 }
            }
        }
    `
	files := map[string]string{"initr.hcl": manifest, "index.html": page}
	rec := &testutil.RecordingModule{Plugins: []string{"slider"}}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, files, testutil.HarnessOptions{Modules: []registry.Module{rec}})

	// --- Assert ---
	require.NoError(t, result.Err)
	testutil.AssertOutcome(t, result.Report, "slider", initr.StatusDone)

	plugins := rec.CallsOf("plugin")
	require.Len(t, plugins, 2)
	assert.Equal(t, 1, plugins[0].Elements)
	assert.Equal(t, 5, plugins[0].Config["speed"])
	assert.Equal(t, true, plugins[0].Config["loop"])
	assert.Equal(t, 2, plugins[1].Elements)
	assert.Equal(t, 3, plugins[1].Config["speed"])

	done := rec.CallsOf("done")
	require.Len(t, done, 1)
	assert.Equal(t, "slider", done[0].Handle)
	assert.Equal(t, 3, done[0].Elements)
}

// TestModuleContract_AppModuleIndexesElements checks that an application
// module is initialized with the matched elements.
func TestModuleContract_AppModuleIndexesElements(t *testing.T) {
	t.Parallel()
	manifest := `
        dependency "attrs" {
            selector = "[data-type]"
            type     = "app-module"
            name     = "wide"
            validate = "AllHaveID"
        }
    `
	files := map[string]string{"initr.hcl": manifest, "index.html": page}
	index := &attrs.Module{}

	result := testutil.RunIntegrationTest(t, files, testutil.HarnessOptions{Modules: []registry.Module{index}})

	require.NoError(t, result.Err)
	testutil.AssertOutcome(t, result.Report, "attrs", initr.StatusDone)
	snaps, ok := index.Lookup("wide")
	require.True(t, ok)
	require.Equal(t, []attrs.Snapshot{{Tag: "div", ID: "s1", Class: "slider", DataType: "wide"}}, snaps)
}

// TestModuleContract_PrintModuleWritesReport runs the core modules and checks
// what they print next to the run report.
func TestModuleContract_PrintModuleWritesReport(t *testing.T) {
	t.Parallel()
	manifest := `
        dependency "print" {
            selector = ".slider"
            type     = "element-plugin"
            name     = "slider"
            done     = "PrintDone"
            defaults = {
                speed = 3
            }
        }
        dependency "printConfig" {
            type = "global-function"
        }
    `
	files := map[string]string{"initr.hcl": manifest, "index.html": page}
	out := &app.SafeBuffer{}

	result := testutil.RunIntegrationTest(t, files, testutil.HarnessOptions{
		Modules: []registry.Module{&print.Module{Out: out}},
	})

	require.NoError(t, result.Err)
	printed := out.String()
	assert.Contains(t, printed, "print: 3 element(s) {speed=3}")
	assert.Contains(t, printed, "div#s1.slider[data-type=wide]")
	assert.Contains(t, printed, "done: slider (3 element(s))")
	assert.Contains(t, printed, "print: {}")

	var report strings.Builder
	require.NoError(t, result.Report.Write(&report))
	assert.Contains(t, report.String(), "2/2 dependencies completed")
}
