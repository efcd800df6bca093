package parse

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spkg/bom"

	"github.com/khen08/mrt3sim/model"
)

// DemandError is a structural problem with the demand table: no
// DateTime column, no O-D columns, or nothing parseable at all.
// Individual bad rows are skipped with a warning instead.
type DemandError struct {
	Detail string
}

func (e *DemandError) Error() string {
	return "demand: " + e.Detail
}

var demandTimeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"01/02/2006 15:04:05",
	"1/2/2006 15:04",
}

type odColumn struct {
	index       int
	origin      int
	destination int
}

// ParseDemand reads a minute-level demand table. The header holds a
// DateTime column and one "origin,destination" column per O-D pair;
// cells are passenger counts for that minute. Rows that fail to parse
// are skipped with a warning. An empty table is not an error.
func ParseDemand(r io.Reader, log logrus.FieldLogger) ([]model.DemandRecord, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}

	reader := gocsv.LazyCSVReader(bom.NewReader(r))

	header, err := reader.Read()
	if err == io.EOF {
		return nil, &DemandError{Detail: "empty input"}
	}
	if err != nil {
		return nil, errors.Wrap(err, "reading demand header")
	}

	timeCol := -1
	var odCols []odColumn
	for i, name := range header {
		name = strings.TrimSpace(name)
		if strings.EqualFold(name, "DateTime") {
			timeCol = i
			continue
		}
		parts := strings.Split(name, ",")
		if len(parts) != 2 {
			continue
		}
		origin, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
		dest, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err1 != nil || err2 != nil {
			continue
		}
		odCols = append(odCols, odColumn{index: i, origin: origin, destination: dest})
	}

	if timeCol == -1 {
		return nil, &DemandError{Detail: "no DateTime column"}
	}
	if len(odCols) == 0 {
		return nil, &DemandError{Detail: "no origin,destination columns"}
	}

	var records []model.DemandRecord
	row := 1
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "reading demand row %d", row)
		}
		row++

		if timeCol >= len(fields) {
			log.WithField("row", row).Warn("skipping short demand row")
			continue
		}

		at, err := parseDemandTime(fields[timeCol])
		if err != nil {
			log.WithFields(logrus.Fields{
				"row":   row,
				"value": fields[timeCol],
			}).Warn("skipping demand row with bad DateTime")
			continue
		}

		for _, od := range odCols {
			if od.index >= len(fields) {
				continue
			}
			cell := strings.TrimSpace(fields[od.index])
			if cell == "" {
				continue
			}
			count, err := strconv.Atoi(cell)
			if err != nil || count < 0 {
				log.WithFields(logrus.Fields{
					"row":    row,
					"column": fmt.Sprintf("%d,%d", od.origin, od.destination),
					"value":  cell,
				}).Warn("skipping bad demand cell")
				continue
			}
			if count == 0 {
				continue
			}
			records = append(records, model.DemandRecord{
				Time:        at,
				Origin:      od.origin,
				Destination: od.destination,
				Count:       count,
			})
		}
	}

	if len(records) == 0 {
		log.Warn("demand table contains no passengers")
	}
	return records, nil
}

func parseDemandTime(value string) (t time.Time, err error) {
	value = strings.TrimSpace(value)
	for _, layout := range demandTimeLayouts {
		if t, err = time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized datetime %q", value)
}
