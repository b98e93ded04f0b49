//go:build integration

package update

import (
	"archive/zip"
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/lepinkainen/eikon/internal/deck"
	"github.com/lepinkainen/eikon/internal/fetch"
	"github.com/lepinkainen/eikon/internal/search"
	"github.com/lepinkainen/eikon/internal/testutil"
)

// newSearchAndImageServers fakes the whole upstream surface of a run:
// the search engine (token page plus results endpoint) and the host the
// found image lives on.
func newSearchAndImageServers(t *testing.T, imageBody []byte, queries *[]string) (searchSrv, imageSrv *httptest.Server) {
	t.Helper()

	imageSrv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write(imageBody)
	}))
	t.Cleanup(imageSrv.Close)

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		*queries = append(*queries, r.URL.Query().Get("q"))
		_, _ = fmt.Fprint(w, `<script>vqd="4-0123456789";</script>`)
	})
	mux.HandleFunc("/i.js", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]string{{"image": imageSrv.URL + "/photo.jpg"}},
		})
	})
	searchSrv = httptest.NewServer(mux)
	t.Cleanup(searchSrv.Close)

	return searchSrv, imageSrv
}

func buildFixtureAPKG(t *testing.T, env *testutil.TestEnv, name string, flds []string) string {
	t.Helper()

	dbPath := env.Path("fixture.anki2")
	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)

	_, err = db.Exec(`CREATE TABLE notes (id INTEGER PRIMARY KEY, flds TEXT NOT NULL, tags TEXT NOT NULL DEFAULT '')`)
	require.NoError(t, err)
	for i, fieldText := range flds {
		_, err = db.Exec("INSERT INTO notes (id, flds) VALUES (?, ?)", i+1, fieldText)
		require.NoError(t, err)
	}
	require.NoError(t, db.Close())

	apkgPath := env.Path(name)
	out, err := os.Create(apkgPath)
	require.NoError(t, err)

	zw := zip.NewWriter(out)

	collection, err := zw.Create(deck.CollectionFile)
	require.NoError(t, err)
	data, err := os.ReadFile(dbPath)
	require.NoError(t, err)
	_, err = collection.Write(data)
	require.NoError(t, err)

	media, err := zw.Create("media")
	require.NoError(t, err)
	_, err = media.Write([]byte("{}"))
	require.NoError(t, err)

	require.NoError(t, zw.Close())
	require.NoError(t, out.Close())

	return apkgPath
}

func readManifest(t *testing.T, apkgPath string) map[string]string {
	t.Helper()

	reader, err := zip.OpenReader(apkgPath)
	require.NoError(t, err)
	defer func() { _ = reader.Close() }()

	for _, file := range reader.File {
		if file.Name != "media" {
			continue
		}
		rc, err := file.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())

		var manifest map[string]string
		require.NoError(t, json.Unmarshal(data, &manifest))
		return manifest
	}

	t.Fatal("no media manifest in package")
	return nil
}

func TestUpdateE2E_CSVDeck(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.WriteFileString("deck.csv",
		"Question,Answer,Image\n"+
			"What is 2+2?,4,\n"+
			"Capital of France?,Paris,eiffel.jpg\n")

	var queries []string
	searchSrv, _ := newSearchAndImageServers(t, testutil.JPEGBytes(t, 1000, 800), &queries)

	cfg := testConfig(env)
	var report bytes.Buffer

	pipeline := NewPipeline(cfg,
		WithSearcher(search.NewClient(
			search.WithBaseURL(searchSrv.URL),
			search.WithUserAgent(cfg.UserAgent),
		)),
		WithFetcher(fetch.NewFetcher(cfg)),
		WithOutput(&report),
	)

	err := pipeline.Run(context.Background(), env.Path("deck.csv"), "E2E Deck")
	require.NoError(t, err)

	assert.Equal(t, []string{"4"}, queries)

	// The downloaded image was resized to fit 800x600 and stored under
	// the generated filename.
	img, err := imaging.Open(env.Path("output", "images", "4-0.jpg"))
	require.NoError(t, err)
	assert.Equal(t, 750, img.Bounds().Dx())
	assert.Equal(t, 600, img.Bounds().Dy())

	// The output package references the image and attaches it as media.
	outputPath := env.Path("output", "E2E Deck.apkg")
	reader := &deck.APKGReader{}
	notes, err := reader.Read(outputPath)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "4-0.jpg", notes[0].Image)
	assert.Equal(t, "eiffel.jpg", notes[1].Image)

	manifest := readManifest(t, outputPath)
	assert.Equal(t, map[string]string{"0": "4-0.jpg"}, manifest)

	out := report.String()
	assert.Contains(t, out, "Images added: 1")
	assert.Contains(t, out, "Updated deck saved to: "+outputPath)
}

func TestUpdateE2E_SingleFieldAPKG(t *testing.T) {
	env := testutil.NewTestEnv(t)
	apkgPath := buildFixtureAPKG(t, env, "cities.apkg", []string{"Helsinki"})

	var queries []string
	searchSrv, _ := newSearchAndImageServers(t, testutil.JPEGBytes(t, 20, 20), &queries)

	cfg := testConfig(env)
	var report bytes.Buffer

	pipeline := NewPipeline(cfg,
		WithSearcher(search.NewClient(
			search.WithBaseURL(searchSrv.URL),
			search.WithUserAgent(cfg.UserAgent),
		)),
		WithFetcher(fetch.NewFetcher(cfg)),
		WithOutput(&report),
	)

	err := pipeline.Run(context.Background(), apkgPath, "Cities")
	require.NoError(t, err)

	// A single-field note searches with the shared text and renders it
	// on both sides.
	assert.Equal(t, []string{"Helsinki"}, queries)

	reader := &deck.APKGReader{}
	notes, err := reader.Read(env.Path("output", "Cities.apkg"))
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "Helsinki", notes[0].Question)
	assert.Equal(t, "Helsinki", notes[0].Answer)
	assert.Equal(t, "helsinki-0.jpg", notes[0].Image)

	env.RequireFileExists("output/images/helsinki-0.jpg")
	assert.Contains(t, report.String(), "Images added: 1")
}
