// Package report exports analysis results to Excel workbooks: one
// detailed workbook per image and one aggregated batch workbook whose
// rows feed the downstream statistics tooling.
package report

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"cellquant/internal/models"
	"cellquant/pkg/regions"
)

// aggregatedColumns is the batch workbook header. The column names are
// a contract with the statistics tooling; renaming one breaks its
// variable lookup.
var aggregatedColumns = []interface{}{
	"Image", "CellLine", "Radiation", "NP", "Dose",
	"NumNuclei",
	"NumROS", "TotalROSArea", "TotalROSFluorescence",
	"NumLDGreen", "TotalLDAreaGreen",
	"NumLDRed", "TotalLDAreaRed",
	"DiffuseArea",
	"NumColoc", "TotalColocArea",
	"Pearson", "MandersM1", "MandersM2", "OverlapCoeff", "PValue",
	"ROS_per_Nucleus", "Fluo_per_Nucleus", "Area_per_ROS", "LDAreaRed_per_Nucleus",
}

// cellValue maps NaN to an empty cell so spreadsheet formulas skip it.
func cellValue(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}

// ratio returns num/den, or NaN when the denominator is zero.
func ratio(num, den float64) float64 {
	if den == 0 {
		return math.NaN()
	}
	return num / den
}

// aggregatedRow flattens one image result into the batch row layout.
func aggregatedRow(r *models.ImageResult) []interface{} {
	numNuclei := len(r.Nuclei)
	numROS := len(r.ROS)
	rosArea := models.TotalArea(r.ROS)
	rosFluo := models.TotalFluorescence(r.ROS, "green")
	ldAreaRed := models.TotalArea(r.LDRed)

	colocArea := 0
	if r.Coloc != nil {
		colocArea = models.TotalArea(r.Coloc.Regions)
	}

	return []interface{}{
		r.Sample.Name,
		r.Sample.Meta.CellLine, r.Sample.Meta.Radiation, r.Sample.Meta.NP, r.Sample.Meta.Dose,
		numNuclei,
		numROS, rosArea, cellValue(rosFluo),
		len(r.LDGreen), models.TotalArea(r.LDGreen),
		len(r.LDRed), ldAreaRed,
		r.DiffuseArea,
		r.NumColoc(), colocArea,
		cellValue(r.ColocMetrics.Pearson),
		cellValue(r.ColocMetrics.MandersM1),
		cellValue(r.ColocMetrics.MandersM2),
		cellValue(r.ColocMetrics.Overlap),
		cellValue(r.ColocMetrics.PValue),
		cellValue(ratio(float64(numROS), float64(numNuclei))),
		cellValue(ratio(rosFluo, float64(numNuclei))),
		cellValue(ratio(float64(rosArea), float64(numROS))),
		cellValue(ratio(float64(ldAreaRed), float64(numNuclei))),
	}
}

// WriteAggregated writes the batch workbook for a set of image results.
// The filename carries the "Aggregated_" prefix expected downstream.
func WriteAggregated(results []*models.ImageResult, outputDir, batchName string) (string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("error creating output directory: %w", err)
	}
	path := filepath.Join(outputDir, "Aggregated_"+batchName+".xlsx")

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Results"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return "", fmt.Errorf("error naming results sheet: %w", err)
	}
	if err := f.SetSheetRow(sheet, "A1", &aggregatedColumns); err != nil {
		return "", fmt.Errorf("error writing header row: %w", err)
	}

	for i, r := range results {
		row := aggregatedRow(r)
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return "", fmt.Errorf("error addressing row %d: %w", i+2, err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return "", fmt.Errorf("error writing row for %s: %w", r.Sample.Name, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("error saving aggregated workbook: %w", err)
	}
	return path, nil
}

// objectColumns is the per-object sheet header of the detail workbook.
var objectColumns = []interface{}{
	"ID", "Type", "CentroidX", "CentroidY", "Area", "Perimeter",
	"Eccentricity", "Solidity", "Extent", "EquivDiameter",
	"MajorAxisLength", "MinorAxisLength", "AssignedNucleus",
	"MeanGreen", "MeanRed",
}

// objectRow flattens one region record; kind tags the detector that
// produced it.
func objectRow(rec *regions.RegionRecord, kind string) []interface{} {
	meanGreen := math.NaN()
	meanRed := math.NaN()
	if rec.MeanIntensity != nil {
		if v, ok := rec.MeanIntensity["green"]; ok {
			meanGreen = v
		}
		if v, ok := rec.MeanIntensity["red"]; ok {
			meanRed = v
		}
	}
	return []interface{}{
		rec.ID, kind,
		rec.Centroid.X, rec.Centroid.Y,
		rec.Area, cellValue(rec.Perimeter),
		cellValue(rec.Eccentricity), cellValue(rec.Solidity),
		cellValue(rec.Extent), cellValue(rec.EquivDiameter),
		cellValue(rec.MajorAxisLength), cellValue(rec.MinorAxisLength),
		rec.AssignedNucleusID,
		cellValue(meanGreen), cellValue(meanRed),
	}
}

// WriteImageDetail writes the per-image workbook with a summary sheet,
// a nuclei sheet, and a per-object sheet covering every detector.
func WriteImageDetail(r *models.ImageResult, outputDir string) (string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("error creating output directory: %w", err)
	}
	path := filepath.Join(outputDir, r.Sample.Name+".xlsx")

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", "Summary"); err != nil {
		return "", fmt.Errorf("error naming summary sheet: %w", err)
	}
	if err := writeSummarySheet(f, r); err != nil {
		return "", err
	}
	if err := writeNucleiSheet(f, r); err != nil {
		return "", err
	}
	if err := writeObjectsSheet(f, r); err != nil {
		return "", err
	}

	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("error saving detail workbook: %w", err)
	}
	return path, nil
}

func writeSummarySheet(f *excelize.File, r *models.ImageResult) error {
	rows := [][]interface{}{
		{"Image", r.Sample.Name},
		{"CellLine", r.Sample.Meta.CellLine},
		{"Radiation", r.Sample.Meta.Radiation},
		{"NP", r.Sample.Meta.NP},
		{"Dose", r.Sample.Meta.Dose},
		{"NumNuclei", len(r.Nuclei)},
		{"NumROS", len(r.ROS)},
		{"TotalROSArea", models.TotalArea(r.ROS)},
		{"NumLDGreen", len(r.LDGreen)},
		{"NumLDRed", len(r.LDRed)},
		{"DiffuseArea", r.DiffuseArea},
		{"NumColoc", r.NumColoc()},
		{"Pearson", cellValue(r.ColocMetrics.Pearson)},
		{"MandersM1", cellValue(r.ColocMetrics.MandersM1)},
		{"MandersM2", cellValue(r.ColocMetrics.MandersM2)},
		{"OverlapCoeff", cellValue(r.ColocMetrics.Overlap)},
		{"PValue", cellValue(r.ColocMetrics.PValue)},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("error addressing summary row: %w", err)
		}
		if err := f.SetSheetRow("Summary", cell, &row); err != nil {
			return fmt.Errorf("error writing summary row: %w", err)
		}
	}
	return nil
}

func writeNucleiSheet(f *excelize.File, r *models.ImageResult) error {
	const sheet = "Nuclei"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("error creating nuclei sheet: %w", err)
	}
	header := []interface{}{
		"ID", "CentroidX", "CentroidY", "Area", "Perimeter",
		"Eccentricity", "Solidity", "NumROS",
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("error writing nuclei header: %w", err)
	}

	for i, n := range r.Nuclei {
		numROS := 0
		if r.ROSByNucleus != nil && n.ID >= 1 && n.ID <= len(r.ROSByNucleus.ByNucleus) {
			numROS = len(r.ROSByNucleus.ByNucleus[n.ID-1])
		}
		row := []interface{}{
			n.ID, n.Centroid.X, n.Centroid.Y, n.Area,
			cellValue(n.Perimeter), cellValue(n.Eccentricity),
			cellValue(n.Solidity), numROS,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("error addressing nuclei row: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("error writing nuclei row: %w", err)
		}
	}
	return nil
}

func writeObjectsSheet(f *excelize.File, r *models.ImageResult) error {
	const sheet = "Objects"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("error creating objects sheet: %w", err)
	}
	if err := f.SetSheetRow(sheet, "A1", &objectColumns); err != nil {
		return fmt.Errorf("error writing objects header: %w", err)
	}

	rowIdx := 2
	write := func(recs []*regions.RegionRecord, kind string) error {
		for _, rec := range recs {
			row := objectRow(rec, kind)
			cell, err := excelize.CoordinatesToCellName(1, rowIdx)
			if err != nil {
				return fmt.Errorf("error addressing objects row: %w", err)
			}
			if err := f.SetSheetRow(sheet, cell, &row); err != nil {
				return fmt.Errorf("error writing objects row: %w", err)
			}
			rowIdx++
		}
		return nil
	}

	if err := write(r.ROS, "ROS"); err != nil {
		return err
	}
	if err := write(r.LDGreen, "LDGreen"); err != nil {
		return err
	}
	if err := write(r.LDRed, "LDRed"); err != nil {
		return err
	}
	if r.Coloc != nil {
		if err := write(r.Coloc.Regions, "Coloc"); err != nil {
			return err
		}
	}
	return nil
}
