package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/pprof"
	"os"
	"reflect"
	"syscall"

	"github.com/aukilabs/go-tooling/pkg/cli"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/dustin/go-humanize"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/segmentio/encoding/json"
)

var (
	// Set at build.
	version = "v0.1.0"

	infoGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name:        "voxplan_info",
		Help:        "Voxel planner information.",
		ConstLabels: prometheus.Labels{"version": version},
	})
)

// Keeps the config field names readable by the cli package in obfuscated
// builds.
var _ = reflect.TypeOf(config{})

func main() {
	conf := config{
		Addr:      ":8080",
		AdminAddr: ":18190",
		LogLevel:  logs.InfoLevel.String(),
	}

	infoGauge.Set(1)

	ctx, cancel := cli.ContextWithSignals(context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer cancel()

	cli.Register().
		Help("Starts the voxel planner server.").
		Options(&conf)
	cli.Load()

	if conf.Version {
		fmt.Println(version)
		os.Exit(0)
	}

	logs.SetLevel(logs.ParseLevel(conf.LogLevel))
	logs.Encoder = json.Marshal
	if conf.LogIndent {
		logs.Encoder = func(v any) ([]byte, error) {
			return json.MarshalIndent(v, "", "  ")
		}
	}

	errors.Encoder = json.Marshal

	mapConf, err := loadMapConfig(conf.MapFile)
	if err != nil {
		logs.Fatal(err)
	}
	if err := validateMapConfig(mapConf); err != nil {
		logs.Fatal(err)
	}

	service, err := newPlanningService(mapConf)
	if err != nil {
		logs.Fatal(errors.New("creating planning service failed").Wrap(err))
	}

	if err := loadStartupState(service, conf.SnapshotFile, mapConf.Zones.Dir); err != nil {
		logs.Fatal(err)
	}

	var mux http.ServeMux
	h := handlers{
		service:      service,
		snapshotFile: conf.SnapshotFile,
	}
	h.register(&mux)

	var admin http.ServeMux
	admin.Handle("/metrics", promhttp.Handler())
	admin.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	admin.HandleFunc("/debug/pprof/", pprof.Index)
	admin.HandleFunc("/debug/pprof/profile", pprof.Profile)
	admin.Handle("/debug/pprof/heap", pprof.Handler("heap"))

	status := service.Status()
	cells := uint64(status.Cells[0] * status.Cells[1] * status.Cells[2])
	logs.WithTag("version", version).
		WithTag("log_level", conf.LogLevel).
		WithTag("cells", humanize.Comma(int64(cells))).
		WithTag("occupancy_size", humanize.Bytes(cells)).
		WithTag("zones", status.Zones).
		WithTag("planners", status.Planners).
		Info("starting voxel planner server")

	listenAndServe(ctx,
		&http.Server{Addr: conf.Addr, Handler: &mux},
		&http.Server{Addr: conf.AdminAddr, Handler: &admin},
	)
}

// loadStartupState restores the snapshot when one exists, otherwise loads
// the zone directory into the fresh map.
func loadStartupState(service *planningService, snapshotFile, zoneDir string) error {
	if snapshotFile != "" {
		if _, err := os.Stat(snapshotFile); err == nil {
			snap, err := loadSnapshot(snapshotFile)
			if err != nil {
				return err
			}
			return service.Restore(snap)
		}
		logs.WithTag("filename", snapshotFile).
			Info("no snapshot found, starting from the map file")
	}

	if zoneDir == "" {
		return nil
	}

	zones, err := loadZonesFromDir(zoneDir)
	if err != nil {
		return err
	}
	if len(zones) != 0 {
		service.AddZones(zones)
	}
	return nil
}
