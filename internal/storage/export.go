package storage

import (
	"encoding/csv"
	"encoding/json"
	"io"
)

type ExportData struct {
	Run        RunMetadata     `json:"run"`
	Steps      int             `json:"steps"`
	Trajectory []TrajectoryRow `json:"trajectory"`
	Scan       []ScanRow       `json:"scan,omitempty"`
}

func ExportJSON(w io.Writer, meta RunMetadata, rows []TrajectoryRow, scan []ScanRow) error {
	data := ExportData{
		Run:        meta,
		Steps:      len(rows),
		Trajectory: rows,
		Scan:       scan,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func ExportCSV(w io.Writer, rows []TrajectoryRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"time_s", "z_m", "v_m_per_s", "forcing_n", "accel_m_per_s2"}); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			formatFloat(r.Time),
			formatFloat(r.Displacement),
			formatFloat(r.Velocity),
			formatFloat(r.Forcing),
			formatFloat(r.Acceleration),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
