package main

import (
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/paulmach/orb/geojson"
	"github.com/sixdouglas/suncalc"
	"solarviz.app/internal/core/geometry"
	"solarviz.app/internal/core/series"
)

// objectKeyLayout parses flat-store object names
const objectKeyLayout = "2006-01-02T150405Z"

// gridStride thins the archive grid to a few hundred points
const gridStride = 160

func main() {
	addr := os.Getenv("MOCK_BACKEND_ADDR")
	if addr == "" {
		addr = ":8081"
	}

	gin.SetMode(gin.ReleaseMode)
	r := newRouter("http://localhost" + addr)

	slog.Info("Mock solar backend starting", "addr", addr)
	if err := r.Run(addr); err != nil {
		slog.Error("Failed to start server", "error", err)
		os.Exit(1)
	}
}

// newRouter serves flat-store objects under /:series/:key and the
// prediction API window under /api/:series/:window. publicURL is the
// address payload links point back to.
func newRouter(publicURL string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/api/:series/:window", func(c *gin.Context) {
		bounds := strings.SplitN(c.Param("window"), "&", 2)
		if len(bounds) != 2 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "window must be start&end"})
			return
		}
		start, err := series.ParseTimestamp(bounds[0])
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		end, err := series.ParseTimestamp(bounds[1])
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		type entry struct {
			Time string `json:"time"`
			URL  string `json:"url"`
		}
		entries := []entry{}
		for ts := series.Hourly.Floor(start); !ts.After(end); ts = ts.Add(time.Hour) {
			entries = append(entries, entry{
				Time: series.InstantString(ts),
				URL:  fmt.Sprintf("%s/payload/%s/%s", publicURL, c.Param("series"), series.ObjectKey(ts)),
			})
		}
		c.JSON(http.StatusOK, entries)
	})

	r.GET("/payload/:series/:key", serveFeatures)
	r.GET("/:series/:key", serveFeatures)

	return r
}

func serveFeatures(c *gin.Context) {
	ts, err := time.Parse(objectKeyLayout, c.Param("key"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no such object"})
		return
	}

	fc := syntheticFeatures(ts)
	data, err := fc.MarshalJSON()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.Data(http.StatusOK, "application/json", data)
}

// syntheticFeatures places a clear-sky irradiance value on a coarse subset of
// the archive grid
func syntheticFeatures(ts time.Time) *geojson.FeatureCollection {
	grid := geometry.NRELGrid()
	fc := geojson.NewFeatureCollection()

	for i := 0; i < 1601; i += gridStride {
		for j := 0; j < 2975; j += gridStride {
			lonLat := grid.IndexToLonLat(float64(i), float64(j))
			f := geojson.NewFeature(lonLat.Point())
			f.Properties["value"] = irradiance(ts, lonLat)
			fc.Append(f)
		}
	}
	return fc
}

// irradiance scales a 1000 W/m² clear-sky peak by the sine of the solar
// altitude. Zero below the horizon.
func irradiance(ts time.Time, lonLat geometry.Coordinate) float64 {
	pos := suncalc.GetPosition(ts.UTC(), lonLat.Y, lonLat.X)
	factor := math.Sin(pos.Altitude)
	if factor <= 0 {
		return 0
	}
	return math.Round(1000*factor*10) / 10
}
