package pointio

import (
	"fmt"
	"io"

	"github.com/parquet-go/parquet-go"

	"github.com/banshee-data/perpl/internal/relpos"
)

// pointRow is the Parquet schema for localisation files.
type pointRow struct {
	X       float64  `parquet:"x"`
	Y       float64  `parquet:"y"`
	Z       *float64 `parquet:"z,optional"`
	Channel *float64 `parquet:"channel,optional"`
}

// ReadParquet reads a localisation table with columns x, y and optional z and
// channel. A column must be either set on every row or absent on every row.
func ReadParquet(r io.ReaderAt, size int64) (Table, error) {
	rows, err := parquet.Read[pointRow](r, size)
	if err != nil {
		return Table{}, fmt.Errorf("failed to read parquet: %w", err)
	}

	t := Table{Header: []string{"x", "y"}, Rows: make([][]float64, 0, len(rows))}
	if len(rows) == 0 {
		return t, nil
	}
	hasZ := rows[0].Z != nil
	hasChannel := rows[0].Channel != nil
	if hasZ {
		t.Header = append(t.Header, "z")
	}
	if hasChannel {
		t.Header = append(t.Header, "channel")
	}

	for i, pr := range rows {
		if (pr.Z != nil) != hasZ || (pr.Channel != nil) != hasChannel {
			return Table{}, fmt.Errorf("parquet row %d: z/channel presence differs from first row", i)
		}
		row := []float64{pr.X, pr.Y}
		if hasZ {
			row = append(row, *pr.Z)
		}
		if hasChannel {
			row = append(row, *pr.Channel)
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// WritePointsParquet writes rows of dims coordinates (plus an optional
// trailing channel) in the schema read by ReadParquet.
func WritePointsParquet(w io.Writer, rows [][]float64, dims int) error {
	out := make([]pointRow, len(rows))
	for i, row := range rows {
		if len(row) < dims {
			return fmt.Errorf("row %d has %d columns, need %d", i, len(row), dims)
		}
		pr := pointRow{X: row[0], Y: row[1]}
		if dims == 3 {
			z := row[2]
			pr.Z = &z
		}
		if len(row) > dims {
			c := row[len(row)-1]
			pr.Channel = &c
		}
		out[i] = pr
	}
	if err := parquet.Write(w, out, parquet.Compression(&parquet.Zstd)); err != nil {
		return fmt.Errorf("failed to write parquet: %w", err)
	}
	return nil
}

type featureRow2D struct {
	X  float64 `parquet:"x"`
	Y  float64 `parquet:"y"`
	XY float64 `parquet:"xy"`
}

type featureRow3D struct {
	X   float64 `parquet:"x"`
	Y   float64 `parquet:"y"`
	Z   float64 `parquet:"z"`
	XY  float64 `parquet:"xy"`
	XZ  float64 `parquet:"xz"`
	YZ  float64 `parquet:"yz"`
	XYZ float64 `parquet:"xyz"`
}

// WriteFeaturesParquet writes a feature table with one column per field of
// relpos.FeatureTable.Columns.
func WriteFeaturesParquet(w io.Writer, table relpos.FeatureTable) error {
	var err error
	if table.Dims == 3 {
		rows := make([]featureRow3D, len(table.Records))
		for i, r := range table.Records {
			rows[i] = featureRow3D{X: r.X, Y: r.Y, Z: r.Z, XY: r.XY, XZ: r.XZ, YZ: r.YZ, XYZ: r.XYZ}
		}
		err = parquet.Write(w, rows, parquet.Compression(&parquet.Zstd))
	} else {
		rows := make([]featureRow2D, len(table.Records))
		for i, r := range table.Records {
			rows[i] = featureRow2D{X: r.X, Y: r.Y, XY: r.XY}
		}
		err = parquet.Write(w, rows, parquet.Compression(&parquet.Zstd))
	}
	if err != nil {
		return fmt.Errorf("failed to write parquet: %w", err)
	}
	return nil
}

// ReadFeaturesParquet reads back a table written by WriteFeaturesParquet.
func ReadFeaturesParquet(r io.ReaderAt, size int64, dims int) (relpos.FeatureTable, error) {
	table := relpos.FeatureTable{Dims: dims}
	if dims == 3 {
		rows, err := parquet.Read[featureRow3D](r, size)
		if err != nil {
			return relpos.FeatureTable{}, fmt.Errorf("failed to read parquet: %w", err)
		}
		table.Records = make([]relpos.FeatureRecord, len(rows))
		for i, fr := range rows {
			table.Records[i] = relpos.FeatureRecord{
				Vector: relpos.Vector{X: fr.X, Y: fr.Y, Z: fr.Z},
				XY:     fr.XY, XZ: fr.XZ, YZ: fr.YZ, XYZ: fr.XYZ,
			}
		}
		return table, nil
	}

	rows, err := parquet.Read[featureRow2D](r, size)
	if err != nil {
		return relpos.FeatureTable{}, fmt.Errorf("failed to read parquet: %w", err)
	}
	table.Records = make([]relpos.FeatureRecord, len(rows))
	for i, fr := range rows {
		table.Records[i] = relpos.FeatureRecord{Vector: relpos.Vector{X: fr.X, Y: fr.Y}, XY: fr.XY}
	}
	return table, nil
}
