// Command saveinfo inspects save files without loading them into a world:
// it prints header metadata (readable even when the payload is damaged) and,
// with -list, queries the save index database instead.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"megacity.sim/internal/persistence/indexdb"
	"megacity.sim/internal/persistence/savefile"
)

func main() {
	var (
		listDB = flag.String("list", "", "list saves recorded in this index database")
		city   = flag.String("city", "", "with -list: show only the newest save for this city")
		full   = flag.Bool("full", false, "decode and migrate the payload, reporting the migration chain")
	)
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	var err error
	switch {
	case *listDB != "":
		err = list(*listDB, *city)
	case flag.NArg() == 1:
		err = inspect(flag.Arg(0), *full)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		slog.Error("saveinfo failed", "err", err)
		os.Exit(1)
	}
}

func inspect(path string, full bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	meta, version, err := savefile.ReadMetadata(data)
	if err != nil {
		return err
	}
	fmt.Printf("file:      %s\n", path)
	fmt.Printf("version:   %d (current %d)\n", version, savefile.CurrentVersion)
	fmt.Printf("city:      %s\n", meta.CityName)
	fmt.Printf("population:%d\n", meta.Population)
	fmt.Printf("treasury:  %.2f\n", meta.Treasury)
	fmt.Printf("day %d, hour %.1f, played %.0fs\n", meta.Day, meta.Hour, meta.PlayTimeSeconds)

	if !full {
		return nil
	}
	rec, _, report, err := savefile.Decode(data)
	if err != nil {
		return err
	}
	fmt.Printf("payload:   %d citizens, %d buildings, %d segments\n",
		len(rec.Citizens), len(rec.Buildings), len(rec.Segments))
	if report.StepsApplied > 0 {
		fmt.Printf("migrated:  v%d -> v%d in %d steps\n",
			report.OriginalVersion, report.FinalVersion, report.StepsApplied)
		for _, d := range report.Descriptions {
			fmt.Printf("  - %s\n", d)
		}
	}
	return nil
}

func list(dbPath, city string) error {
	db, err := indexdb.Open(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	if city != "" {
		row, err := db.LatestFor(city)
		if err != nil {
			return err
		}
		printRow(*row)
		return nil
	}

	rows, err := db.ListSaves(50)
	if err != nil {
		return err
	}
	for _, row := range rows {
		printRow(row)
	}
	return nil
}

func printRow(r indexdb.SaveRow) {
	fmt.Printf("%-30s tick %-10d day %-5d pop %-8d $%-12.0f %s\n",
		r.CityName, r.Tick, r.Day, r.Population, r.Treasury, r.Path)
}
