package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/conform"
	"github.com/aretw0/conform/internal/config"
	"github.com/aretw0/conform/internal/logging"
	"github.com/aretw0/conform/internal/testutils"
	"github.com/aretw0/conform/pkg/adapters/memory"
	"github.com/aretw0/conform/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const userDef = `
name: string
age:
  $all: [number, {$min: 18}]
`

func TestDecodeDocument(t *testing.T) {
	doc, err := DecodeDocument([]byte(`{"age": 21, "name": "ana"}`))
	require.NoError(t, err)
	assert.Equal(t, json.Number("21"), doc["age"])

	doc, err = DecodeDocument([]byte("name: ana\nage: 21\ntags: [a, b]\n"))
	require.NoError(t, err)
	assert.Equal(t, json.Number("21"), doc["age"])
	assert.Equal(t, []any{"a", "b"}, doc["tags"])

	_, err = DecodeDocument([]byte(`[1, 2]`))
	assert.ErrorContains(t, err, "must be an object")

	_, err = DecodeDocument([]byte("  \n"))
	assert.Error(t, err)
}

func TestReadDocument_Stdin(t *testing.T) {
	doc, err := ReadDocument("-", strings.NewReader(`{"name":"ana"}`))
	require.NoError(t, err)
	assert.Equal(t, "ana", doc["name"])
}

func TestLoadDir(t *testing.T) {
	dir := testutils.WriteFiles(t, map[string]string{
		"user.yaml":    userDef,
		"product.json": `{"sku": "string"}`,
		"README.md":    "ignored",
		".hidden.yaml": "ignored: string",
	})
	eng := conform.New(memory.NewRepository())

	n, err := LoadDir(context.Background(), eng, dir)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	names, err := eng.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"product", "user"}, names)

	n, err = LoadDir(context.Background(), eng, filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestLoadDir_BrokenDefinition(t *testing.T) {
	dir := testutils.WriteFiles(t, map[string]string{"bad.yaml": "age: {$min: nope}"})
	_, err := LoadDir(context.Background(), conform.New(memory.NewRepository()), dir)
	assert.ErrorIs(t, err, domain.ErrInvalidDefinition)
}

func TestCheck(t *testing.T) {
	dir := testutils.WriteFiles(t, map[string]string{
		"user.yaml":  userDef,
		"ok.json":    `{"name": "ana", "age": 30}`,
		"young.yaml": "name: bob\nage: 12\n",
		"extra.json": `{"name": "ana", "age": 30, "nick": "a"}`,
	})
	eng := conform.New(memory.NewRepository())
	ctx := context.Background()
	def := filepath.Join(dir, "user.yaml")

	r, err := Check(ctx, eng, CheckOptions{Definition: def, Document: filepath.Join(dir, "ok.json")})
	require.NoError(t, err)
	assert.True(t, r.Valid)
	assert.Equal(t, "user", r.Schema)

	r, err = Check(ctx, eng, CheckOptions{Schema: "user", Document: filepath.Join(dir, "young.yaml")})
	require.NoError(t, err)
	assert.False(t, r.Valid)
	require.Len(t, r.Errors, 1)
	assert.Equal(t, []string{"age"}, r.Errors[0].Path)

	r, err = Check(ctx, eng, CheckOptions{Schema: "user", Document: filepath.Join(dir, "extra.json")})
	require.NoError(t, err)
	assert.False(t, r.Valid)

	r, err = Check(ctx, eng, CheckOptions{Schema: "user", Document: filepath.Join(dir, "extra.json"), AllowExtra: true})
	require.NoError(t, err)
	assert.True(t, r.Valid)

	_, err = Check(ctx, eng, CheckOptions{Document: "-"})
	assert.Error(t, err)
}

func TestWriteReport(t *testing.T) {
	r := domain.NewReport("user", nil, 0)

	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, r, FormatText))
	assert.Equal(t, "user: valid\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteReport(&buf, r, FormatJSON))
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, true, decoded["valid"])

	buf.Reset()
	require.NoError(t, WriteReport(&buf, r, FormatMarkdown))
	assert.Contains(t, buf.String(), "`user`: valid")

	assert.Error(t, WriteReport(&buf, r, "xml"))
}

func TestOpenRepository(t *testing.T) {
	ctx := context.Background()

	repo, closeFn, err := OpenRepository(ctx, config.StoreConfig{Driver: config.DriverMemory})
	require.NoError(t, err)
	assert.NotNil(t, repo)
	assert.NoError(t, closeFn())

	repo, closeFn, err = OpenRepository(ctx, config.StoreConfig{
		Driver: config.DriverSQLite,
		SQLite: config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "defs.db")},
	})
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, domain.Definition{Name: "user", Format: domain.FormatYAML, Source: []byte(userDef)}))
	assert.NoError(t, closeFn())

	_, _, err = OpenRepository(ctx, config.StoreConfig{Driver: "etcd"})
	assert.ErrorContains(t, err, "unknown store driver")
}

func TestNewRuntime_PreloadsSchemas(t *testing.T) {
	dir := testutils.WriteFiles(t, map[string]string{"user.yaml": userDef})
	cfg := config.Default()
	cfg.SchemasDir = dir

	rt, err := NewRuntime(context.Background(), cfg, logging.NewNop())
	require.NoError(t, err)
	defer rt.Close()

	r, err := rt.Engine.Validate(context.Background(), "user", map[string]any{"name": "ana", "age": 40})
	require.NoError(t, err)
	assert.True(t, r.Valid)
	assert.NotNil(t, rt.Metrics)
}

func TestChainHooks(t *testing.T) {
	var calls []string
	a := domain.LifecycleHooks{OnDefinitionSaved: func(context.Context, *domain.DefinitionEvent) { calls = append(calls, "a") }}
	b := domain.LifecycleHooks{
		OnDefinitionSaved: func(context.Context, *domain.DefinitionEvent) { calls = append(calls, "b") },
		OnValidated:       func(context.Context, *domain.ValidationEvent) { calls = append(calls, "v") },
	}

	h := chainHooks(a, b)
	h.OnDefinitionSaved(context.Background(), &domain.DefinitionEvent{})
	h.OnValidated(context.Background(), &domain.ValidationEvent{})
	assert.Nil(t, h.OnDefinitionDeleted)
	assert.Equal(t, []string{"a", "b", "v"}, calls)
}

func TestOpenRepository_ReadOnly(t *testing.T) {
	dir := testutils.WriteFiles(t, map[string]string{"user.yaml": userDef})
	repo, _, err := OpenRepository(context.Background(), config.StoreConfig{
		Driver:   config.DriverFile,
		Dir:      dir,
		ReadOnly: true,
	})
	require.NoError(t, err)

	def, err := repo.Get(context.Background(), "user")
	require.NoError(t, err)
	assert.Equal(t, domain.FormatYAML, def.Format)
	assert.ErrorIs(t, repo.Delete(context.Background(), "user"), domain.ErrReadOnly)
}

func TestNewRuntime_ChainsStoreMiddleware(t *testing.T) {
	dir := testutils.WriteFiles(t, map[string]string{"user.yaml": userDef})
	cfg := config.Default()
	cfg.Store = config.StoreConfig{Driver: config.DriverFile, Dir: dir, ReadOnly: true}

	var logs bytes.Buffer
	logger := logging.NewWithWriter(&logs, slog.LevelDebug, logging.FormatText)
	rt, err := NewRuntime(context.Background(), cfg, logger)
	require.NoError(t, err)
	defer rt.Close()

	r, err := rt.Engine.Validate(context.Background(), "user", map[string]any{"name": "ana", "age": 40})
	require.NoError(t, err)
	assert.True(t, r.Valid)
	assert.Contains(t, logs.String(), "op=get")

	err = rt.Engine.Register(context.Background(), "other", []byte("id: string"))
	assert.ErrorIs(t, err, domain.ErrReadOnly)
	assert.Contains(t, logs.String(), "op=save")
}
