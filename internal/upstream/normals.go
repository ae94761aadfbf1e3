package upstream

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/jlaffaye/ftp"

	"github.com/bfarley42/wxlens/internal/models"
)

const (
	normalsFTPHost = "ftp.ncei.noaa.gov:21"
	normalsFTPPath = "/pub/data/normals/1991-2020/products/station"
)

// NormalsClient pulls 1991-2020 monthly climate normals from the NCEI
// anonymous FTP archive.
type NormalsClient struct {
	host string
	path string
}

func NewNormalsClient() *NormalsClient {
	return &NormalsClient{host: normalsFTPHost, path: normalsFTPPath}
}

// FetchNormals downloads and parses the monthly-normals CSV for one station.
func (n *NormalsClient) FetchNormals(stationID string) ([]models.Normals, error) {
	conn, err := ftp.Dial(n.host, ftp.DialWithTimeout(30*time.Second))
	if err != nil {
		return nil, fmt.Errorf("ftp dial: %w", err)
	}
	defer conn.Quit()

	if err := conn.Login("anonymous", "anonymous"); err != nil {
		return nil, fmt.Errorf("ftp login: %w", err)
	}

	resp, err := conn.Retr(fmt.Sprintf("%s/%s.csv", n.path, stationID))
	if err != nil {
		return nil, fmt.Errorf("ftp retr: %w", err)
	}
	defer resp.Close()

	normals, err := parseNormalsCSV(stationID, resp)
	if err != nil {
		return nil, fmt.Errorf("parse normals for %s: %w", stationID, err)
	}
	return normals, nil
}

// parseNormalsCSV reads the NCEI station-normals CSV, keyed by header name
// since column order varies between product files. Missing values are coded
// as large negative sentinels and become NULL.
func parseNormalsCSV(stationID string, r io.Reader) ([]models.Normals, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToUpper(strings.TrimSpace(name))] = i
	}
	monthCol, ok := col["DATE"]
	if !ok {
		return nil, fmt.Errorf("missing DATE column")
	}

	var normals []models.Normals
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		if monthCol >= len(record) {
			continue
		}
		month, err := strconv.Atoi(strings.TrimSpace(record[monthCol]))
		if err != nil || month < 1 || month > 12 {
			continue
		}

		n := models.Normals{
			StationID: stationID,
			Month:     month,
			TempMax:   normalValue(record, col, "MLY-TMAX-NORMAL"),
			TempMin:   normalValue(record, col, "MLY-TMIN-NORMAL"),
			Precip:    normalValue(record, col, "MLY-PRCP-NORMAL"),
			Snowfall:  normalValue(record, col, "MLY-SNOW-NORMAL"),
		}
		normals = append(normals, n)
	}
	return normals, nil
}

func normalValue(record []string, col map[string]int, name string) sql.NullFloat64 {
	i, ok := col[name]
	if !ok || i >= len(record) {
		return sql.NullFloat64{}
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(record[i]), 64)
	if err != nil || v <= -999 {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}
