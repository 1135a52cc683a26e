package types_test

import (
	"encoding/json"
	"testing"

	types "github.com/okian/psyscale/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestScaleStatistics(t *testing.T) {
	Convey("Given scale statistics", t, func() {
		stat := types.ScaleStatistics{ID: 2, Path: "b", Name: "B", Count: 0}

		Convey("When encoding to JSON", func() {
			raw, err := json.Marshal(stat)

			Convey("Then only name and count are exposed", func() {
				So(err, ShouldBeNil)
				So(string(raw), ShouldEqual, `{"name":"B","count":0}`)
			})
		})

		Convey("When folding a list by name", func() {
			m := types.ByName([]types.ScaleStatistics{
				{ID: 1, Name: "A", Count: 3},
				stat,
			})

			Convey("Then zero counts are kept", func() {
				So(m, ShouldResemble, map[string]uint64{"A": 3, "B": 0})
			})
		})
	})
}
