package rastertile

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const maxUploadBytes = 100 << 20

// A Server exposes a [Registry] of rasters over HTTP: a single-coordinate
// lookup endpoint and a CSV batch upload endpoint, plus health and metrics
// endpoints for operability.
type Server struct {
	echo     *echo.Echo
	registry *Registry
}

// NewServer returns a Server backed by registry.
func NewServer(registry *Registry) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
	}))
	e.Use(middleware.BodyLimit(fmt.Sprintf("%dM", maxUploadBytes/(1<<20))))
	e.Use(metricsMiddleware)

	s := &Server{echo: e, registry: registry}

	e.GET("/healthz", s.health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/api/coordinate", s.getCoordinate)
	e.POST("/api/upload", s.uploadCSV)

	return s
}

// Start begins serving on addr. It blocks until the server stops.
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

// metricsMiddleware records request counts and latency per route for the
// /metrics endpoint.
func metricsMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)

		route := c.Path()
		status := c.Response().Status
		if err != nil {
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			} else if status < http.StatusInternalServerError {
				status = http.StatusInternalServerError
			}
		}

		httpRequestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		return err
	}
}

const defaultEPSG = 4326

type coordinateResponse struct {
	Latitude        float64  `json:"latitude"`
	Longitude       float64  `json:"longitude"`
	ExposureValue   *float64 `json:"exposure_value"`
	ExecutionTimeMs float64  `json:"execution_time_ms"`
}

// getCoordinate handles GET /api/coordinate?latitude=&longitude=&tiff_path=&epsg=
func (s *Server) getCoordinate(c echo.Context) error {
	start := time.Now()

	lat, err := strconv.ParseFloat(c.QueryParam("latitude"), 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid latitude"})
	}
	lon, err := strconv.ParseFloat(c.QueryParam("longitude"), 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid longitude"})
	}
	path := c.QueryParam("tiff_path")
	if path == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing tiff_path"})
	}
	epsg := defaultEPSG
	if raw := c.QueryParam("epsg"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			epsg = v
		}
	}

	svc, err := s.registry.Get(path)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": fmt.Sprintf("failed to open raster: %v", err)})
	}

	ctx := c.Request().Context()
	value, err := sampleAtGeoWithEPSG(ctx, svc, lon, lat, epsg)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": fmt.Sprintf("failed to extract value: %v", err)})
	}

	return c.JSON(http.StatusOK, coordinateResponse{
		Latitude:        lat,
		Longitude:       lon,
		ExposureValue:   &value,
		ExecutionTimeMs: float64(time.Since(start).Microseconds()) / 1000.0,
	})
}

// sampleAtGeoWithEPSG reprojects (lon, lat) from epsg into the raster's
// native CRS, if it differs, before sampling IFD 0.
func sampleAtGeoWithEPSG(ctx context.Context, svc *Service, lon, lat float64, epsg int) (float64, error) {
	info, err := svc.GeoInfo(0)
	if err != nil {
		return 0, err
	}

	geoX, geoY := lon, lat
	if info.HasEPSG && info.EPSG != epsg {
		transform, err := NewTransformer(epsg, info.EPSG)
		if err != nil {
			return 0, err
		}
		geoX, geoY, err = transform.Forward(lon, lat)
		if err != nil {
			return 0, err
		}
	}

	px, py, err := info.Affine.GeoToPixel(geoX, geoY)
	if err != nil {
		return 0, err
	}
	if px < 0 || py < 0 {
		return 0, OutOfBoundsError("geo coordinate outside raster")
	}

	return svc.Sample(ctx, 0, PixelCoord{X: uint64(px), Y: uint64(py)}, DataTypeU8)
}

type csvPoint struct {
	latitude  float64
	longitude float64
	name      string
}

// uploadCSV handles POST /api/upload (multipart/form-data: csv file,
// tiff_path field, optional epsg field). It streams back a CSV response
// with out-of-bounds points marked OUT_OF_BOUNDS, matching the convention
// of the batch extraction tool this endpoint replaces.
func (s *Server) uploadCSV(c echo.Context) error {
	start := time.Now()

	path := c.FormValue("tiff_path")
	if path == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing tiff_path parameter"})
	}
	epsg := defaultEPSG
	if raw := c.FormValue("epsg"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			epsg = v
		}
	}

	fileHeader, err := c.FormFile("csv")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing CSV file"})
	}
	file, err := fileHeader.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing CSV file"})
	}
	defer file.Close()

	points, hasNames, err := readCSVPoints(file)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": fmt.Sprintf("failed to process CSV: %v", err)})
	}

	svc, err := s.registry.Get(path)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": fmt.Sprintf("failed to open raster: %v", err)})
	}

	ctx := c.Request().Context()
	info, err := svc.GeoInfo(0)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": fmt.Sprintf("failed to process CSV: %v", err)})
	}

	var transform *Transformer
	if info.HasEPSG && info.EPSG != epsg {
		transform, err = NewTransformer(epsg, info.EPSG)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": fmt.Sprintf("failed to process CSV: %v", err)})
		}
	}

	results := make([]string, len(points))
	var coords []PixelCoord
	var resultIndices []int

	for i, p := range points {
		geoX, geoY := p.longitude, p.latitude
		if transform != nil {
			geoX, geoY, err = transform.Forward(p.longitude, p.latitude)
			if err != nil {
				results[i] = "OUT_OF_BOUNDS"
				continue
			}
		}
		px, py, err := info.Affine.GeoToPixel(geoX, geoY)
		if err != nil || px < 0 || py < 0 {
			results[i] = "OUT_OF_BOUNDS"
			continue
		}
		coords = append(coords, PixelCoord{X: uint64(px), Y: uint64(py)})
		resultIndices = append(resultIndices, i)
	}

	successful := 0
	if len(coords) > 0 {
		batch, err := svc.SampleBatch(ctx, 0, coords, DataTypeU8)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": fmt.Sprintf("failed to process CSV: %v", err)})
		}
		for j, r := range batch {
			i := resultIndices[j]
			if r.Err != nil {
				results[i] = "OUT_OF_BOUNDS"
				continue
			}
			results[i] = strconv.FormatFloat(r.Value, 'f', -1, 64)
			successful++
		}
	}

	elapsed := time.Since(start).Seconds()
	pixelsPerSecond := 0.0
	if elapsed > 0 {
		pixelsPerSecond = float64(successful) / elapsed
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# Statistics\n")
	fmt.Fprintf(&sb, "# Total points: %d\n", len(points))
	fmt.Fprintf(&sb, "# Successful: %d\n", successful)
	fmt.Fprintf(&sb, "# Failed: %d\n", len(points)-successful)
	fmt.Fprintf(&sb, "# Execution time: %.2f ms\n", elapsed*1000)
	fmt.Fprintf(&sb, "# Pixels per second: %.0f\n", pixelsPerSecond)

	if hasNames {
		sb.WriteString("latitude,longitude,name,exposure_value\n")
	} else {
		sb.WriteString("latitude,longitude,exposure_value\n")
	}
	for i, p := range points {
		if hasNames {
			fmt.Fprintf(&sb, "%g,%g,%s,%s\n", p.latitude, p.longitude, p.name, results[i])
		} else {
			fmt.Fprintf(&sb, "%g,%g,%s\n", p.latitude, p.longitude, results[i])
		}
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/csv")
	c.Response().Header().Set("Content-Disposition", `attachment; filename="exposure_results.csv"`)
	return c.String(http.StatusOK, sb.String())
}

func readCSVPoints(r io.Reader) ([]csvPoint, bool, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, false, err
	}
	latIdx, lonIdx, nameIdx := -1, -1, -1
	for i, field := range header {
		switch strings.ToLower(strings.TrimSpace(field)) {
		case "latitude":
			latIdx = i
		case "longitude":
			lonIdx = i
		case "name":
			nameIdx = i
		}
	}
	if latIdx < 0 || lonIdx < 0 {
		return nil, false, InvalidFormatError("CSV missing latitude/longitude columns")
	}

	var points []csvPoint
	for {
		record, err := reader.Read()
		if err != nil {
			break
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(record[latIdx]), 64)
		if err != nil {
			continue
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(record[lonIdx]), 64)
		if err != nil {
			continue
		}
		p := csvPoint{latitude: lat, longitude: lon}
		if nameIdx >= 0 && nameIdx < len(record) {
			p.name = record[nameIdx]
		}
		points = append(points, p)
	}
	return points, nameIdx >= 0, nil
}
