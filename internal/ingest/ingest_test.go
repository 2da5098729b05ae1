package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/genidx/internal/record"
	"github.com/inodb/genidx/internal/store"
)

// failingWriter delegates to a real store until failAfter batches have been
// committed, then fails every subsequent flush.
type failingWriter struct {
	store     *store.Store
	failAfter int
	batches   int
}

func (w *failingWriter) InsertBatch(records []record.PositionRecord) error {
	if w.batches >= w.failAfter {
		return fmt.Errorf("disk full")
	}
	if err := w.store.InsertBatch(records); err != nil {
		return err
	}
	w.batches++
	return nil
}

func writeInput(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func openStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// genotypeInput returns a genotype-array export with n data rows.
func genotypeInput(n int) string {
	var b strings.Builder
	b.WriteString("# rsid\tchromosome\tposition\tgenotype\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "rs%d\t1\t%d\tAA\n", i+1, (i+1)*100)
	}
	return b.String()
}

func TestIngest_GenotypeArray(t *testing.T) {
	path := writeInput(t, "genome.txt", genotypeInput(10))
	s := openStore(t)

	total, err := New(s, DefaultConfig()).Ingest(path)
	require.NoError(t, err)
	assert.Equal(t, int64(10), total)

	count, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, total, count)
}

func TestIngest_TotalIndependentOfBatchSize(t *testing.T) {
	content := genotypeInput(25)

	for _, batchSize := range []int{1, 7, 1000} {
		t.Run(fmt.Sprintf("batch_%d", batchSize), func(t *testing.T) {
			path := writeInput(t, "genome.txt", content)
			s := openStore(t)

			cfg := DefaultConfig()
			cfg.BatchSize = batchSize

			total, err := New(s, cfg).Ingest(path)
			require.NoError(t, err)
			assert.Equal(t, int64(25), total)

			count, err := s.Count()
			require.NoError(t, err)
			assert.Equal(t, int64(25), count)
		})
	}
}

func TestIngest_SameFileTwiceDoubles(t *testing.T) {
	path := writeInput(t, "genome.txt", genotypeInput(5))
	s := openStore(t)

	pipe := New(s, DefaultConfig())

	total, err := pipe.Ingest(path)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)

	total, err = pipe.Ingest(path)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)

	count, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(10), count, "re-ingestion is not deduplicated")
}

func TestIngest_VCFSkipsMalformedRows(t *testing.T) {
	content := "##fileformat=VCFv4.2\n" +
		"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\n" +
		"chr1\t100\trs1\tA\tT\t30\tPASS\t.\n" +
		"chr1\tbroken\trs2\tA\tT\t30\tPASS\t.\n" +
		"short\trow\n" +
		"chr2\t200\trs3\tG\tC\t.\tPASS\t.\n"
	path := writeInput(t, "sample.vcf", content)
	s := openStore(t)

	total, err := New(s, DefaultConfig()).Ingest(path)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total, "malformed rows are skipped, not fatal")

	count, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestIngest_FASTAPerBase(t *testing.T) {
	path := writeInput(t, "genome.fa", ">chr1\nACGT\nNN\n>chr2\nAT\n")
	s := openStore(t)

	total, err := New(s, DefaultConfig()).Ingest(path)
	require.NoError(t, err)
	assert.Equal(t, int64(8), total)

	var chr2 int64
	require.NoError(t, s.DB().QueryRow(
		"SELECT COUNT(*) FROM variants WHERE chrom = 'chr2'").Scan(&chr2))
	assert.Equal(t, int64(2), chr2)
}

func TestIngest_GzippedInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "genome.txt.gz")

	f, err := os.Create(path)
	require.NoError(t, err)
	gz := gzip.NewWriter(f)
	_, err = gz.Write([]byte(genotypeInput(4)))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())

	s := openStore(t)

	total, err := New(s, DefaultConfig()).Ingest(path)
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
}

func TestIngest_MissingFile(t *testing.T) {
	s := openStore(t)

	_, err := New(s, DefaultConfig()).Ingest(filepath.Join(t.TempDir(), "absent.txt"))
	require.Error(t, err)

	count, err := s.Count()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestIngest_StorageFailureIsFatal(t *testing.T) {
	path := writeInput(t, "genome.txt", genotypeInput(10))

	s := openStore(t)
	require.NoError(t, s.Close())

	// Every flush fails against a closed store; the run aborts.
	total, err := New(s, DefaultConfig()).Ingest(path)
	require.Error(t, err)
	assert.Zero(t, total)
}

func TestIngest_CommittedBatchesSurviveFailure(t *testing.T) {
	path := writeInput(t, "genome.txt", genotypeInput(10))
	s := openStore(t)

	w := &failingWriter{store: s, failAfter: 2}
	cfg := DefaultConfig()
	cfg.BatchSize = 3 // batches of 3,3,3,1; the third flush fails

	total, err := New(w, cfg).Ingest(path)
	require.Error(t, err)
	assert.Equal(t, int64(6), total, "only committed batches count")

	// No rollback across batches: the first two stay persisted.
	count, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(6), count)
}

func TestIngest_PartialFinalBatchFlushed(t *testing.T) {
	path := writeInput(t, "genome.txt", genotypeInput(10))
	s := openStore(t)

	cfg := DefaultConfig()
	cfg.BatchSize = 3 // 10 records = three full batches + one partial

	total, err := New(s, cfg).Ingest(path)
	require.NoError(t, err)
	assert.Equal(t, int64(10), total)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 1000, cfg.BatchSize)
	assert.Equal(t, int64(1_000_000), cfg.ProgressInterval)
}
