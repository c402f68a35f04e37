package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"doorsim/domain/core"
	"doorsim/domain/simulation"
	"doorsim/internal/errors"
)

// Format identifies a supported export encoding
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// CSVHeader is the fixed column layout of the CSV (and XLSX trial sheet)
// export. Game numbers count per strategy from 1 and WinRate is the
// cumulative rate after that trial.
var CSVHeader = []string{"Game", "Strategy", "PlayerChoice", "HostRevealed", "FinalChoice", "CarDoor", "Won", "WinRate"}

// ParseFormat resolves a case-insensitive format token.
// Fails with UNSUPPORTED_FORMAT for anything but json, csv or xlsx.
func ParseFormat(token string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(token))) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", errors.WithCode(errors.CodeUnsupportedFormat, core.ErrUnsupportedFormat)
	}
}

// Exporter serializes simulation results to in-memory transfer formats
type Exporter struct{}

// NewExporter creates an exporter
func NewExporter() *Exporter {
	return &Exporter{}
}

// Export serializes the result in the requested format
func (e *Exporter) Export(result *simulation.SimulationResult, format Format) ([]byte, error) {
	if result == nil {
		return nil, errors.WithCode(errors.CodeNoData, core.ErrNoData)
	}
	switch format {
	case FormatJSON:
		return e.ToJSON(result)
	case FormatCSV:
		return e.ToCSV(result)
	case FormatXLSX:
		return e.ToXLSX(result)
	default:
		return nil, errors.WithCode(errors.CodeUnsupportedFormat, core.ErrUnsupportedFormat)
	}
}

// ToJSON produces a lossless structural dump of the result
func (e *Exporter) ToJSON(result *simulation.SimulationResult) ([]byte, error) {
	if result == nil {
		return nil, errors.WithCode(errors.CodeNoData, core.ErrNoData)
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal simulation result")
	}
	return data, nil
}

// ToCSV produces one row per trial in generation order under the fixed
// header
func (e *Exporter) ToCSV(result *simulation.SimulationResult) ([]byte, error) {
	if result == nil {
		return nil, errors.WithCode(errors.CodeNoData, core.ErrNoData)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(CSVHeader); err != nil {
		return nil, errors.Wrap(err, "failed to write CSV header")
	}

	for _, strategy := range result.Strategies {
		batch := result.PerStrategy[strategy]
		if batch == nil {
			continue
		}
		for i, t := range batch.Trials {
			point := batch.WinRateHistory[i]
			row := []string{
				strconv.Itoa(point.GameNumber),
				strategy.String(),
				strconv.Itoa(int(t.PlayerChoice)),
				strconv.Itoa(int(t.HostRevealedDoor)),
				strconv.Itoa(int(t.FinalChoice)),
				strconv.Itoa(int(t.CarDoor)),
				strconv.FormatBool(t.Won),
				strconv.FormatFloat(point.WinRate, 'f', -1, 64),
			}
			if err := w.Write(row); err != nil {
				return nil, errors.Wrap(err, "failed to write CSV row")
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, errors.Wrap(err, "failed to flush CSV")
	}
	return buf.Bytes(), nil
}

// ToXLSX produces a workbook with the trial table plus a per-strategy
// summary sheet
func (e *Exporter) ToXLSX(result *simulation.SimulationResult) ([]byte, error) {
	if result == nil {
		return nil, errors.WithCode(errors.CodeNoData, core.ErrNoData)
	}

	f := excelize.NewFile()
	defer f.Close()

	const trialSheet = "Trials"
	if err := f.SetSheetName("Sheet1", trialSheet); err != nil {
		return nil, errors.Wrap(err, "failed to create trial sheet")
	}

	for col, name := range CSVHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(trialSheet, cell, name); err != nil {
			return nil, errors.Wrap(err, "failed to write trial header")
		}
	}

	rowIdx := 2
	for _, strategy := range result.Strategies {
		batch := result.PerStrategy[strategy]
		if batch == nil {
			continue
		}
		for i, t := range batch.Trials {
			point := batch.WinRateHistory[i]
			values := []interface{}{
				point.GameNumber, strategy.String(),
				int(t.PlayerChoice), int(t.HostRevealedDoor), int(t.FinalChoice), int(t.CarDoor),
				t.Won, point.WinRate,
			}
			for col, v := range values {
				cell, _ := excelize.CoordinatesToCellName(col+1, rowIdx)
				if err := f.SetCellValue(trialSheet, cell, v); err != nil {
					return nil, errors.Wrap(err, "failed to write trial row")
				}
			}
			rowIdx++
		}
	}

	if err := e.writeSummarySheet(f, result); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode workbook")
	}
	return buf.Bytes(), nil
}

func (e *Exporter) writeSummarySheet(f *excelize.File, result *simulation.SimulationResult) error {
	const sheet = "Summary"
	if _, err := f.NewSheet(sheet); err != nil {
		return errors.Wrap(err, "failed to create summary sheet")
	}

	header := []string{"Strategy", "Played", "Won", "WinRate", "Theoretical"}
	for col, name := range header {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return errors.Wrap(err, "failed to write summary header")
		}
	}

	for i, strategy := range result.Strategies {
		batch := result.PerStrategy[strategy]
		if batch == nil {
			continue
		}
		values := []interface{}{
			strategy.String(), batch.Played, batch.Won,
			batch.ObservedWinRate(), strategy.TheoreticalWinRate(),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return errors.Wrap(err, "failed to write summary row")
			}
		}
	}
	return nil
}
