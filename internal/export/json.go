package export

import (
	"encoding/json"
	"io"

	"github.com/san-kum/spheresim/internal/dynamo"
	"github.com/san-kum/spheresim/internal/storage"
)

type ExportData struct {
	Run        storage.RunMetadata `json:"run"`
	Steps      int                 `json:"steps"`
	Times      []float64           `json:"times"`
	Positions  [][3]float64        `json:"positions"`
	Velocities [][3]float64        `json:"velocities"`
}

// NewExportData pairs run metadata with its samples. Times are derived from
// meta.Dt.
func NewExportData(meta storage.RunMetadata, traj dynamo.Trajectory) ExportData {
	data := ExportData{
		Run:        meta,
		Steps:      traj.Len(),
		Times:      traj.Times(meta.Dt),
		Positions:  make([][3]float64, traj.Len()),
		Velocities: make([][3]float64, traj.Len()),
	}
	for i := range traj.Positions {
		data.Positions[i] = traj.Positions[i]
		data.Velocities[i] = traj.Velocities[i]
	}
	return data
}

func WriteJSON(w io.Writer, meta storage.RunMetadata, traj dynamo.Trajectory) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewExportData(meta, traj))
}
