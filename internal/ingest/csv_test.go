package ingest

import (
	"strings"
	"testing"
)

func TestVesselsCSV(t *testing.T) {
	in := strings.Join([]string{
		"name,openPort,openDate,dwt,grainCuft,dailyHire,addressCommission,ecoBallastKnots,ecoLadenKnots,warrantedBallastKnots,warrantedLadenKnots",
		"Coral Trader,Santos,2026-03-02,180000,2400000,18000,0.0375,14,13.5,12,12",
	}, "\n")
	vs, err := Vessels(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Vessels: %v", err)
	}
	if len(vs) != 1 {
		t.Fatalf("expected 1 vessel, got %d", len(vs))
	}
	v := vs[0]
	if v.Name != "Coral Trader" || v.OpenPort != "Santos" || v.DWT != 180000 {
		t.Fatalf("unexpected vessel: %+v", v)
	}
	if v.Eco.BallastKnots != 14 || v.Warranted.LadenKnots != 12 {
		t.Fatalf("speeds not parsed: %+v", v)
	}
	if v.OpenDate != "2026-03-02" {
		t.Fatalf("openDate not parsed: %q", v.OpenDate)
	}
}

func TestVesselsCSVMissingColumn(t *testing.T) {
	in := "name,dwt\nA,1000\n"
	if _, err := Vessels(strings.NewReader(in)); err == nil {
		t.Fatal("expected missing column error")
	}
}

func TestCargosCSV(t *testing.T) {
	in := strings.Join([]string{
		"name,loadPort,dischargePort,quantity,minQty,maxQty,freightRate,commissions,laycanStart,laycanEnd,loadRate,dischargeRate",
		"Soybeans March,Santos,Qingdao,150000,142500,157500,22,0.0375;0.0125,2026-03-01,2026-03-07,15000,25000",
	}, "\n")
	cs, err := Cargos(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Cargos: %v", err)
	}
	if len(cs) != 1 {
		t.Fatalf("expected 1 cargo, got %d", len(cs))
	}
	c := cs[0]
	if c.Name != "Soybeans March" || c.Quantity != 150000 || c.FreightRate != 22 {
		t.Fatalf("unexpected cargo: %+v", c)
	}
	if len(c.Commissions) != 2 || c.Commissions[0] != 0.0375 {
		t.Fatalf("commissions not parsed: %+v", c.Commissions)
	}
	if c.LaycanStart != "2026-03-01" || c.LaycanEnd != "2026-03-07" {
		t.Fatalf("laycan not parsed: %+v", c)
	}
}

func TestCargosCSVThousandsSeparators(t *testing.T) {
	in := "name,loadPort,dischargePort,quantity,freightRate\nWheat,Rosario,Alexandria,\"60,000\",18.5\n"
	cs, err := Cargos(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Cargos: %v", err)
	}
	if cs[0].Quantity != 60000 {
		t.Fatalf("quantity with thousands separator: got %v", cs[0].Quantity)
	}
}

func TestCargosCSVBadNumber(t *testing.T) {
	in := "name,loadPort,dischargePort,quantity,freightRate\nWheat,Rosario,Alexandria,abc,18.5\n"
	if _, err := Cargos(strings.NewReader(in)); err == nil {
		t.Fatal("expected parse error")
	}
}
