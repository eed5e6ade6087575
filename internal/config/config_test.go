package config_test

import (
	"runtime"
	"testing"

	"github.com/armandov/sellerpulse/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
			convey.So(cfg.QueueSize, convey.ShouldEqual, 100_000)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU()*4)
			convey.So(cfg.DedupeSize, convey.ShouldEqual, 500_000)
			convey.So(cfg.ShardCount, convey.ShouldEqual, 8)
			convey.So(cfg.MaxRaceLimit, convey.ShouldEqual, 100)
		})

		convey.Convey("Then the stage vocabulary covers the full pipeline", func() {
			convey.So(cfg.PipelineStages, convey.ShouldResemble, []string{
				"Prospección", "Negociación", "Cerrado Ganado", "Cerrado Perdido",
			})
			convey.So(cfg.StageNegotiation, convey.ShouldEqual, "Negociación")
			convey.So(cfg.StageWonMarker, convey.ShouldEqual, "Ganado")
			convey.So(cfg.StageLostMarker, convey.ShouldEqual, "Perdido")
		})
	})
}
