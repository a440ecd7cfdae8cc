package exporter

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/estrelalabs/telereport/internal/aggregator"
	"github.com/estrelalabs/telereport/internal/types"
)

var nonAlnum = regexp.MustCompile(`[^A-Za-z0-9]+`)

// slugify turns a store label into a sheet-name-safe fragment.
func slugify(s string) string {
	s = nonAlnum.ReplaceAllString(strings.TrimSpace(s), "-")
	return strings.ToLower(strings.Trim(s, "-"))
}

// sheetName builds an Excel-safe per-store sheet name. Excel caps sheet
// names at 31 characters.
func sheetName(store string) string {
	name := "loja_" + slugify(store)
	if len(name) > 31 {
		name = name[:31]
	}
	return name
}

// Write renders the monthly workbook: a summary sheet, an adjusted-losses
// sheet, and one detail sheet per store.
func Write(w io.Writer, summary []types.StoreAggregate, adjusted []aggregator.AdjustedLoss, detail func(store string) []types.DetailRow) error {
	x := excelize.NewFile()
	defer x.Close()

	add := func(name string, rows [][]string) error {
		idx, err := x.NewSheet(name)
		if err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
		for r, row := range rows {
			for c, v := range row {
				cell, _ := excelize.CoordinatesToCellName(c+1, r+1)
				if err := x.SetCellStr(name, cell, v); err != nil {
					return err
				}
			}
		}
		if name == "resumo" {
			x.SetActiveSheet(idx)
		}
		return nil
	}

	resumo := [][]string{{"Loja", "Recebidas", "Perdidas", "Volume", "% Perda"}}
	for _, agg := range summary {
		resumo = append(resumo, []string{
			agg.Store,
			strconv.Itoa(agg.Received),
			strconv.Itoa(agg.Lost),
			strconv.Itoa(agg.TotalVolume),
			strconv.FormatFloat(agg.PctLost, 'f', 1, 64),
		})
	}
	if err := add("resumo", resumo); err != nil {
		return err
	}

	ajustadas := [][]string{{"Loja", "Perdidas Totais", "Atendidas Televendas", "Perdas Ajustadas"}}
	for _, al := range adjusted {
		ajustadas = append(ajustadas, []string{
			al.Store,
			strconv.Itoa(al.LostTotal),
			strconv.Itoa(al.HandledByQueue),
			strconv.Itoa(al.Adjusted),
		})
	}
	if err := add("perdas_ajustadas", ajustadas); err != nil {
		return err
	}

	for _, agg := range summary {
		rows := [][]string{{"Data", "Hora", "Status"}}
		for _, d := range detail(agg.Store) {
			rows = append(rows, []string{d.Date, d.Time, d.Status})
		}
		if err := add(sheetName(agg.Store), rows); err != nil {
			return err
		}
	}

	if err := x.DeleteSheet("Sheet1"); err != nil {
		return err
	}
	return x.Write(w)
}
