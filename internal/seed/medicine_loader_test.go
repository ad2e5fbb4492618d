package seed

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"medbill/m/internal/database"
	"medbill/m/internal/migrations"
	"medbill/m/internal/store"
)

const catalog = `name,price,stock,description
Paracetamol,2.50,40,Tablet 500mg
Amoxicillin,"7.25",12
,1.00,5,missing name
Cetirizine,abc,3,bad price
Ibuprofen,3.10,-4,negative stock
Drops,0.125,5,sub-cent price
"ORS, orange",1.20,100,Oral rehydration salts
`

func TestLoadMedicines(t *testing.T) {
	db, err := database.Connect(":memory:")
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := migrations.Run(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	path := filepath.Join(t.TempDir(), "medicines.csv")
	if err := os.WriteFile(path, []byte(catalog), 0o600); err != nil {
		t.Fatal(err)
	}

	log := logrus.New()
	log.SetOutput(io.Discard)
	n, err := LoadMedicines(context.Background(), db, path, log)
	if err != nil {
		t.Fatalf("LoadMedicines: %v", err)
	}
	if n != 3 {
		t.Fatalf("loaded %d rows, want 3", n)
	}

	meds, err := store.NewMedicineStore(db, store.CascadeDelete).List(context.Background(), "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	var names []string
	for _, m := range meds {
		names = append(names, m.Name)
	}
	if got := strings.Join(names, "|"); got != "ORS, orange|Amoxicillin|Paracetamol" {
		t.Fatalf("medicines = %q", got)
	}
	if meds[1].Price.StringFixed(2) != "7.25" || meds[1].Stock != 12 || meds[1].Description != "" {
		t.Fatalf("unexpected Amoxicillin row: %+v", meds[1])
	}
}

func TestLoadMedicinesMissingFile(t *testing.T) {
	db, err := database.Connect(":memory:")
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if _, err := LoadMedicines(context.Background(), db, filepath.Join(t.TempDir(), "none.csv"), logrus.New()); err == nil {
		t.Fatal("expected an error for a missing catalog")
	}
}
