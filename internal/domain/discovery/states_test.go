package discovery_test

import (
	"testing"

	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/domain/discovery"
	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestStateCounts(t *testing.T) {
	Convey("Given a pool spread over three states", t, func() {
		p := append(pool(), model.Candidate{ID: "5", PrimaryPosition: "2B", GradYear: 2026})
		counts := discovery.StateCounts(p)

		Convey("States are grouped regardless of case", func() {
			So(counts, ShouldHaveLength, 3)
			So(counts["TX"].Total, ShouldEqual, 2)
			So(counts["TX"].ByGradYear, ShouldResemble, map[int]int{2026: 2})
			So(counts["CA"].ByGradYear, ShouldResemble, map[int]int{2025: 1})
			So(counts["FL"].ByGradYear, ShouldResemble, map[int]int{2027: 1})
		})

		Convey("Candidates without a state are left out", func() {
			total := 0
			for _, sc := range counts {
				total += sc.Total
			}
			So(total, ShouldEqual, 4)
			So(counts, ShouldNotContainKey, "")
		})
	})

	Convey("An empty pool gives an empty breakdown", t, func() {
		counts := discovery.StateCounts(nil)
		So(counts, ShouldNotBeNil)
		So(counts, ShouldBeEmpty)
	})
}

func TestSearchByName(t *testing.T) {
	Convey("Given candidates with names", t, func() {
		p := []model.Candidate{
			{ID: "1", Name: "Marcus Lee"},
			{ID: "2", Name: "lee anderson"},
			{ID: "3", Name: "Tyler Brooks"},
			{ID: "4"},
		}

		Convey("Matching ignores case and orders by name", func() {
			So(ids(discovery.SearchByName(p, "LEE")), ShouldResemble, []string{"2", "1"})
		})

		Convey("Substrings inside a name match", func() {
			So(ids(discovery.SearchByName(p, " brook ")), ShouldResemble, []string{"3"})
		})

		Convey("A blank query matches nothing", func() {
			out := discovery.SearchByName(p, "  ")
			So(out, ShouldNotBeNil)
			So(out, ShouldBeEmpty)
		})
	})
}
