// Package dataset loads the case and centroid tables from a Store and decodes
// them into domain records.
package dataset

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jszwec/csvutil"
	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/birdflu-tracker/internal/domain"
)

var (
	// ErrDatasetNotFound is returned (wrapped) when a store has no object
	// under the requested name.
	ErrDatasetNotFound = errors.New("dataset not found")

	// ErrMissingColumn is returned (wrapped) when a header lacks a required column.
	ErrMissingColumn = errors.New("missing required column")
)

var (
	caseColumns     = []string{"Collection Date", "Bird Species", "HPAI Strain", "State", "County"}
	centroidColumns = []string{"State", "County", "Latitude", "Longitude"}

	utf8BOM = []byte{0xEF, 0xBB, 0xBF}
)

// Store opens named objects for reading.
type Store interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// Datasets is the decoded content of one load.
type Datasets struct {
	Cases     []domain.CaseRecord
	Centroids []domain.CentroidRecord

	// Fingerprint identifies the exact bytes of both files.
	Fingerprint string
}

// Loader reads the case and centroid files from a Store.
type Loader struct {
	store         Store
	casesName     string
	centroidsName string
}

// NewLoader creates a Loader for the given object names.
func NewLoader(store Store, casesName, centroidsName string) *Loader {
	return &Loader{
		store:         store,
		casesName:     casesName,
		centroidsName: centroidsName,
	}
}

// Load reads both files concurrently and decodes them. Either file missing
// fails the whole load with an error wrapping ErrDatasetNotFound.
func (l *Loader) Load(ctx context.Context) (*Datasets, error) {
	var casesRaw, centroidsRaw []byte

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		b, err := l.read(gctx, l.casesName)
		casesRaw = b
		return err
	})
	g.Go(func() error {
		b, err := l.read(gctx, l.centroidsName)
		centroidsRaw = b
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	cases, err := DecodeCases(bytes.NewReader(casesRaw))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", l.casesName, err)
	}
	centroids, err := DecodeCentroids(bytes.NewReader(centroidsRaw))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", l.centroidsName, err)
	}

	return &Datasets{
		Cases:       cases,
		Centroids:   centroids,
		Fingerprint: Fingerprint(casesRaw, centroidsRaw),
	}, nil
}

func (l *Loader) read(ctx context.Context, name string) ([]byte, error) {
	rc, err := l.store.Open(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer rc.Close()

	b, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return b, nil
}

// Fingerprint returns a hex SHA-256 over both file contents.
func Fingerprint(cases, centroids []byte) string {
	h := sha256.New()
	h.Write(cases)
	h.Write([]byte{0})
	h.Write(centroids)
	return hex.EncodeToString(h.Sum(nil))
}

// DecodeCases decodes the case table. Columns beyond the required five are ignored.
func DecodeCases(r io.Reader) ([]domain.CaseRecord, error) {
	return decodeAll[domain.CaseRecord](r, caseColumns)
}

// DecodeCentroids decodes the centroid table. Rows with blank or non-numeric
// coordinates are kept without coordinates.
func DecodeCentroids(r io.Reader) ([]domain.CentroidRecord, error) {
	raws, err := decodeAll[domain.RawCentroid](r, centroidColumns)
	if err != nil {
		return nil, err
	}
	centroids := make([]domain.CentroidRecord, len(raws))
	for i := range raws {
		centroids[i] = domain.ParseCentroid(raws[i])
	}
	return centroids, nil
}

func decodeAll[T any](r io.Reader, required []string) ([]T, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty file, expected %s", ErrMissingColumn, strings.Join(required, ", "))
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	if err := checkHeader(header, required); err != nil {
		return nil, err
	}

	dec, err := csvutil.NewDecoder(&paddedReader{r: cr, width: len(header)}, header...)
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	var out []T
	for row := 1; ; row++ {
		var v T
		if err := dec.Decode(&v); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// paddedReader fills short rows with empty fields up to the header width, so a
// row missing trailing values decodes with those values blank.
type paddedReader struct {
	r     *csv.Reader
	width int
}

func (p *paddedReader) Read() ([]string, error) {
	record, err := p.r.Read()
	if err != nil {
		return nil, err
	}
	for len(record) < p.width {
		record = append(record, "")
	}
	return record, nil
}

func checkHeader(header, required []string) error {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[h] = true
	}
	var missing []string
	for _, col := range required {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return nil
}
