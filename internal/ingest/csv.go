// Package ingest parses external fleet and cargo datasets into the wire
// types. CSV is the interchange format brokers and owners actually send;
// column order follows the header row, unknown columns are ignored.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"fleetnav/internal/model"
)

func readTable(r io.Reader) (header map[string]int, rows [][]string, err error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) < 1 {
		return nil, nil, fmt.Errorf("empty dataset")
	}
	header = map[string]int{}
	for i, name := range records[0] {
		header[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return header, records[1:], nil
}

func field(header map[string]int, row []string, name string) string {
	i, ok := header[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func numField(header map[string]int, row []string, name string) (float64, error) {
	s := field(header, row, name)
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0, fmt.Errorf("column %s: %w", name, err)
	}
	return f, nil
}

// Vessels parses a fleet CSV. Required columns: name, openport, dwt,
// dailyhire and the eco/warranted speed and consumption columns.
func Vessels(r io.Reader) ([]model.VesselIn, error) {
	header, rows, err := readTable(r)
	if err != nil {
		return nil, err
	}
	for _, req := range []string{"name", "openport", "dwt", "dailyhire"} {
		if _, ok := header[req]; !ok {
			return nil, fmt.Errorf("missing column %s", req)
		}
	}
	out := make([]model.VesselIn, 0, len(rows))
	for n, row := range rows {
		v := model.VesselIn{
			Name:     field(header, row, "name"),
			OpenPort: field(header, row, "openport"),
			OpenDate: field(header, row, "opendate"),
		}
		nums := []struct {
			col string
			dst *float64
		}{
			{"dwt", &v.DWT},
			{"graincuft", &v.GrainCuft},
			{"dailyhire", &v.DailyHire},
			{"addresscommission", &v.AddressCommission},
			{"portworkifo", &v.PortWorkIFO},
			{"portworkmdo", &v.PortWorkMDO},
			{"portidleifo", &v.PortIdleIFO},
			{"portidlemdo", &v.PortIdleMDO},
			{"ecoballastknots", &v.Eco.BallastKnots},
			{"ecoladenknots", &v.Eco.LadenKnots},
			{"ecoballastifo", &v.Eco.BallastIFO},
			{"ecoballastmdo", &v.Eco.BallastMDO},
			{"ecoladenifo", &v.Eco.LadenIFO},
			{"ecoladenmdo", &v.Eco.LadenMDO},
			{"warrantedballastknots", &v.Warranted.BallastKnots},
			{"warrantedladenknots", &v.Warranted.LadenKnots},
			{"warrantedballastifo", &v.Warranted.BallastIFO},
			{"warrantedballastmdo", &v.Warranted.BallastMDO},
			{"warrantedladenifo", &v.Warranted.LadenIFO},
			{"warrantedladenmdo", &v.Warranted.LadenMDO},
		}
		for _, f := range nums {
			val, err := numField(header, row, f.col)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", n+2, err)
			}
			*f.dst = val
		}
		out = append(out, v)
	}
	return out, nil
}

// Cargos parses a cargo book CSV. Required columns: name, loadport,
// dischargeport, quantity, freightrate.
func Cargos(r io.Reader) ([]model.CargoIn, error) {
	header, rows, err := readTable(r)
	if err != nil {
		return nil, err
	}
	for _, req := range []string{"name", "loadport", "dischargeport", "quantity", "freightrate"} {
		if _, ok := header[req]; !ok {
			return nil, fmt.Errorf("missing column %s", req)
		}
	}
	out := make([]model.CargoIn, 0, len(rows))
	for n, row := range rows {
		c := model.CargoIn{
			Name:          field(header, row, "name"),
			LoadPort:      field(header, row, "loadport"),
			DischargePort: field(header, row, "dischargeport"),
			LaycanStart:   field(header, row, "laycanstart"),
			LaycanEnd:     field(header, row, "laycanend"),
		}
		// commissions come as a semicolon list of fractions
		if s := field(header, row, "commissions"); s != "" {
			for _, part := range strings.Split(s, ";") {
				f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
				if err != nil {
					return nil, fmt.Errorf("row %d: commissions: %w", n+2, err)
				}
				c.Commissions = append(c.Commissions, f)
			}
		}
		nums := []struct {
			col string
			dst *float64
		}{
			{"quantity", &c.Quantity},
			{"minqty", &c.MinQty},
			{"maxqty", &c.MaxQty},
			{"freightrate", &c.FreightRate},
			{"stowfactor", &c.StowFactor},
			{"ballastbonus", &c.BallastBonus},
			{"loadrate", &c.LoadRate},
			{"dischargerate", &c.DischargeRate},
			{"loadturndays", &c.LoadTurnDays},
			{"dischargeturndays", &c.DischargeTurnDays},
			{"portidledays", &c.PortIdleDays},
			{"loadportcost", &c.LoadPortCost},
			{"dischargeportcost", &c.DischargePortCost},
		}
		for _, f := range nums {
			val, err := numField(header, row, f.col)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", n+2, err)
			}
			*f.dst = val
		}
		out = append(out, c)
	}
	return out, nil
}
