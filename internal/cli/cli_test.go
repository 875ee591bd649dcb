package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/arcaluminis-wiring/internal/calib"
	"github.com/coreman2200/arcaluminis-wiring/internal/config"
	"github.com/coreman2200/arcaluminis-wiring/internal/convert"
	"github.com/coreman2200/arcaluminis-wiring/internal/diagnostics"
	"github.com/coreman2200/arcaluminis-wiring/internal/pixel"
	"github.com/coreman2200/arcaluminis-wiring/internal/wiring"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := New(&out).RootCommand()
	cmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "none.yaml")}, args...))
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	err := cmd.Execute()
	return out.String(), err
}

// runDefault runs without --config so a missing default file is tolerated.
func runDefault(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := New(&out).RootCommand()
	cmd.SetArgs(append([]string{}, args...))
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	err := cmd.Execute()
	return out.String(), err
}

func markerFile(t *testing.T, name string, dim wiring.Dim, s wiring.Spec) (string, []byte) {
	t.Helper()
	design := pixel.Bytes(calib.MarkerFrame(dim, calib.DefaultMarkers))
	c, err := convert.NewCodec(dim, 3)
	require.NoError(t, err)
	raw, err := c.Encode(design, s)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, raw, 0o644))
	return path, design
}

var csBL = wiring.Spec{Mode: wiring.ColumnSerpentine, Corner: wiring.BottomLeft}

func TestExplicitMissingConfig(t *testing.T) {
	_, err := run(t, "table")
	require.Error(t, err)
}

func TestTable(t *testing.T) {
	out, err := runDefault(t, "table", "--width", "3", "--height", "2", "--spec", "row-serpentine/top-left")
	require.NoError(t, err)
	assert.Equal(t, "# 3x2 row-serpentine/top-left\n0 1 2\n5 4 3\n", out)

	out, err = runDefault(t, "table", "--width", "3", "--height", "2", "--spec", "column-major/bottom-right")
	require.NoError(t, err)
	assert.Equal(t, "# 3x2 column-major/bottom-right\n5 3 1\n4 2 0\n", out)
}

func TestTableRejectsBadSpec(t *testing.T) {
	_, err := runDefault(t, "table", "--spec", "zigzag/top-left")
	assert.ErrorIs(t, err, wiring.ErrInvalidSpec)
}

func TestTableRays(t *testing.T) {
	out, err := runDefault(t, "table", "--width", "16", "--height", "16", "--rays", "4", "--per-ray", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "# 12 leds on 16x16\n")
}

func TestDetect(t *testing.T) {
	dim := wiring.Dim{W: 8, H: 8}
	path, _ := markerFile(t, "show.bin", dim, csBL)
	out, err := runDefault(t, "detect", "--width", "8", "--height", "8", path)
	require.NoError(t, err)

	var rep detectReport
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, "show.bin", rep.File)
	assert.Equal(t, csBL, rep.Result.Spec)
	assert.Equal(t, "DETECT.OK", rep.Diagnostic.Code)
	assert.Nil(t, rep.Hint)
}

func TestDetectGuessSize(t *testing.T) {
	dim := wiring.Dim{W: 16, H: 8}
	path, _ := markerFile(t, "show.bin", dim, csBL)
	out, err := runDefault(t, "detect", "--guess-size", path)
	require.NoError(t, err)

	var rep detectReport
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	require.NotNil(t, rep.Layout)
	assert.Equal(t, dim, rep.Layout.Dim)
	assert.Equal(t, csBL, rep.Result.Spec)

	_, err = runDefault(t, "detect", "--guess-size", "--width", "16", path)
	assert.Error(t, err)
}

func TestDetectWrongSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.bin")
	require.NoError(t, os.WriteFile(path, make([]byte, 10), 0o644))
	_, err := runDefault(t, "detect", "--width", "8", "--height", "8", path)
	assert.ErrorIs(t, err, convert.ErrDimensionMismatch)
}

func TestConvertAuto(t *testing.T) {
	dim := wiring.Dim{W: 8, H: 8}
	path, design := markerFile(t, "show.bin", dim, csBL)
	dst := filepath.Join(t.TempDir(), "out.bin")
	_, err := runDefault(t, "convert", "--width", "8", "--height", "8", "--to", "row-major/top-left", "-o", dst, path)
	require.NoError(t, err)

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, design, got)
}

func TestConvertExplicitRoundTrip(t *testing.T) {
	dim := wiring.Dim{W: 5, H: 3}
	path, _ := markerFile(t, "a.bin", dim, csBL)
	orig, err := os.ReadFile(path)
	require.NoError(t, err)

	mid := filepath.Join(t.TempDir(), "mid.bin")
	back := filepath.Join(t.TempDir(), "back.bin")
	_, err = runDefault(t, "convert", "--width", "5", "--height", "3",
		"--from", csBL.String(), "--to", "row-major/top-right", "-o", mid, path)
	require.NoError(t, err)
	_, err = runDefault(t, "convert", "--width", "5", "--height", "3",
		"--from", "row-major/top-right", "--to", csBL.String(), "-o", back, mid)
	require.NoError(t, err)

	got, err := os.ReadFile(back)
	require.NoError(t, err)
	assert.Equal(t, orig, got)
}

func TestConvertRequiresOutput(t *testing.T) {
	path, _ := markerFile(t, "a.bin", wiring.Dim{W: 4, H: 4}, csBL)
	_, err := runDefault(t, "convert", "--width", "4", "--height", "4", path)
	assert.Error(t, err)
}

func TestImportValidate(t *testing.T) {
	dim := wiring.Dim{W: 6, H: 4}
	path, _ := markerFile(t, "show.bin", dim, csBL)
	proj := filepath.Join(t.TempDir(), "show.yaml")
	_, err := runDefault(t, "import", "--width", "6", "--height", "4", "--spec", csBL.String(), "-o", proj, path)
	require.NoError(t, err)

	out, err := runDefault(t, "validate", proj)
	require.NoError(t, err)
	var d diagnostics.Diagnostic
	require.NoError(t, json.Unmarshal([]byte(out), &d))
	assert.Equal(t, "PROJECT.OK", d.Code)
	assert.EqualValues(t, 24, d.Evidence["leds"])
	assert.EqualValues(t, 1, d.Evidence["frames"])
}

func TestValidateRejectsGarbage(t *testing.T) {
	proj := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(proj, []byte("version: nope\n"), 0o644))
	out, err := runDefault(t, "validate", proj)
	require.Error(t, err)
	var d diagnostics.Diagnostic
	require.NoError(t, json.Unmarshal([]byte(out), &d))
	assert.Equal(t, diagnostics.Err, d.Severity)
}

func TestCalibThenDetect(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "calib.bin")
	_, err := runDefault(t, "calib", "--width", "8", "--height", "8", "--kind", "corner_markers", "--spec", csBL.String(), "-o", dst)
	require.NoError(t, err)

	out, err := runDefault(t, "detect", "--width", "8", "--height", "8", dst)
	require.NoError(t, err)
	var rep detectReport
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, csBL, rep.Result.Spec)
}

func TestCalibIndexSweep(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "sweep.bin")
	_, err := runDefault(t, "calib", "--width", "3", "--height", "2", "--kind", "index_sweep", "-o", dst)
	require.NoError(t, err)
	b, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Len(t, b, 6*6*3)
}

func TestCalibUnknownKind(t *testing.T) {
	_, err := runDefault(t, "calib", "--kind", "rainbow")
	assert.Error(t, err)
}

func TestInitWritesConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	_, err := runDefault(t, "init", "--config", path, "--width", "32", "--height", "8")
	require.NoError(t, err)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, wiring.Dim{W: 32, H: 8}, cfg.Dim())

	// later commands pick the file up
	out, err := runDefault(t, "table", "--config", path, "--spec", "row-major/top-left")
	require.NoError(t, err)
	assert.Contains(t, out, "# 32x8 row-major/top-left\n")

	_, err = runDefault(t, "init", "--config", path)
	assert.Error(t, err)
	_, err = runDefault(t, "init", "--config", path, "--force")
	require.NoError(t, err)
}

func TestTableMask(t *testing.T) {
	mask := filepath.Join(t.TempDir(), "plus.txt")
	require.NoError(t, os.WriteFile(mask, []byte(".#.\n###\n.#.\n"), 0o644))
	out, err := runDefault(t, "table", "--width", "3", "--height", "3", "--spec", "row-serpentine/top-left", "--mask", mask)
	require.NoError(t, err)
	assert.Equal(t, "# 5 leds on 3x3\n0\t1,0\n1\t2,1\n2\t1,1\n3\t0,1\n4\t1,2\n", out)
}

func TestImportMaskValidates(t *testing.T) {
	dim := wiring.Dim{W: 3, H: 3}
	path, _ := markerFile(t, "show.bin", dim, csBL)
	mask := filepath.Join(t.TempDir(), "plus.txt")
	require.NoError(t, os.WriteFile(mask, []byte(".#.\n###\n.#.\n"), 0o644))
	proj := filepath.Join(t.TempDir(), "show.yaml")
	_, err := runDefault(t, "import", "--width", "3", "--height", "3", "--spec", csBL.String(), "--mask", mask, "-o", proj, path)
	require.NoError(t, err)

	out, err := runDefault(t, "validate", proj)
	require.NoError(t, err)
	var d diagnostics.Diagnostic
	require.NoError(t, json.Unmarshal([]byte(out), &d))
	assert.Equal(t, "PROJECT.OK", d.Code)
	assert.EqualValues(t, 5, d.Evidence["leds"])
	assert.Equal(t, true, d.Evidence["ring"])
}
