package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk-schedule/schedule-hub/internal/domain/lesson/lessontest"
)

// setupWorkdir points the store at a fresh sqlite file and leaves the
// process in a directory without config.yaml.
func setupWorkdir(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("APP_ENV", "development")
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(dir, "schedule.db"))
	t.Setenv("REDIS_ENABLED", "false")
	t.Setenv("LK_USERNAME", "")
	t.Setenv("LK_PASSWORD", "")
	t.Setenv("LK_RANGE_START", "")
	t.Setenv("LK_RANGE_END", "")

	return dir
}

func writeExport(t *testing.T, dir string) string {
	t.Helper()

	data, err := json.Marshal(lessontest.Records())
	require.NoError(t, err)

	path := filepath.Join(dir, "lessons.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestImportThenQuery(t *testing.T) {
	dir := setupWorkdir(t)
	export := writeExport(t, dir)

	out, err := execute(t, "", "import", export)
	require.NoError(t, err)
	assert.Contains(t, out, "Загружено занятий: 3, упоминаний преподавателей: 6\n")

	out, err = execute(t, "", "day", "2025-02-26")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "2025-02-26 - Программирование на Python"), lines[0])
	assert.True(t, strings.HasSuffix(lines[0], "Тип: Лабораторные работы"), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "2025-02-26 - Физика"), lines[1])

	out, err = execute(t, "", "subject", "Физика")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "Описание:\n"))

	out, err = execute(t, "", "teacher", "Иванов", "И.И.")
	require.NoError(t, err)
	assert.Contains(t, out, "Найдено 2 занятий для преподавателя Иванов И.И.:")

	out, err = execute(t, "", "stats")
	require.NoError(t, err)
	assert.Equal(t, "В базе занятий: 3, упоминаний преподавателей: 6\n", out)
}

func TestImportFromStdin(t *testing.T) {
	setupWorkdir(t)

	data, err := json.Marshal(lessontest.Records()[:1])
	require.NoError(t, err)

	out, err := execute(t, string(data), "import", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "Загружено занятий: 1")
}

func TestImportReplacesPreviousLoad(t *testing.T) {
	dir := setupWorkdir(t)
	export := writeExport(t, dir)

	_, err := execute(t, "", "import", export)
	require.NoError(t, err)
	_, err = execute(t, "", "import", export)
	require.NoError(t, err)

	out, err := execute(t, "", "stats")
	require.NoError(t, err)
	assert.Equal(t, "В базе занятий: 3, упоминаний преподавателей: 6\n", out)
}

func TestDay_NotFound(t *testing.T) {
	setupWorkdir(t)

	for _, date := range []string{"2030-01-01", "26.02.2025"} {
		out, err := execute(t, "", "day", date)
		require.NoError(t, err)
		assert.Equal(t, "Расписание на этот день не найдено.\n", out)
	}
}

func TestShell_ExitsOnZero(t *testing.T) {
	dir := setupWorkdir(t)
	export := writeExport(t, dir)

	_, err := execute(t, "", "import", export)
	require.NoError(t, err)

	out, err := execute(t, "1\n2025-02-27\n0\n", "shell")
	require.NoError(t, err)
	assert.Contains(t, out, "2025-02-27 - Физика")
}

func TestSync_RequiresCredentials(t *testing.T) {
	setupWorkdir(t)

	_, err := execute(t, "", "sync")
	assert.ErrorContains(t, err, "LK_USERNAME and LK_PASSWORD are required")
}

func TestSync_RejectsHalfRange(t *testing.T) {
	setupWorkdir(t)
	t.Setenv("LK_USERNAME", "student")
	t.Setenv("LK_PASSWORD", "secret")

	_, err := execute(t, "", "sync", "--start", "2025-02-01")
	assert.ErrorContains(t, err, "--start and --end must be given together")
}

func TestWatch_RejectsBadSchedule(t *testing.T) {
	setupWorkdir(t)
	t.Setenv("LK_USERNAME", "student")
	t.Setenv("LK_PASSWORD", "secret")
	t.Setenv("SYNC_SCHEDULE", "sometimes")

	_, err := execute(t, "", "watch")
	assert.ErrorContains(t, err, "SYNC_SCHEDULE")
}

func TestInvalidConfig(t *testing.T) {
	setupWorkdir(t)
	t.Setenv("STORE_DRIVER", "mysql")

	_, err := execute(t, "", "stats")
	assert.ErrorContains(t, err, "STORE_DRIVER must be sqlite or postgres")
}
