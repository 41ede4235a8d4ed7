package neighbors

import "testing"

func TestStableSortByDistanceOrdersAscending(t *testing.T) {
	row := PairRow{
		{Index: 0, Distance: 5},
		{Index: 1, Distance: 1},
		{Index: 2, Distance: 3},
	}
	StableSortByDistance(row)

	want := []Index{1, 2, 0}
	for i, w := range want {
		if row[i].Index != w {
			t.Errorf("row[%d].Index = %d, want %d", i, row[i].Index, w)
		}
	}
	for i := 1; i < len(row); i++ {
		if row[i].Distance < row[i-1].Distance {
			t.Errorf("row not sorted at %d: %v", i, row)
		}
	}
}

func TestStableSortByDistanceBreaksTiesByInsertionOrder(t *testing.T) {
	row := PairRow{
		{Index: 3, Distance: 1},
		{Index: 1, Distance: 1},
		{Index: 2, Distance: 1},
	}
	StableSortByDistance(row)

	want := []Index{3, 1, 2}
	for i, w := range want {
		if row[i].Index != w {
			t.Errorf("tie order not preserved: row[%d].Index = %d, want %d", i, row[i].Index, w)
		}
	}
}

func TestFillRanksRoundTrips(t *testing.T) {
	row := PairRow{
		{Index: 2, Distance: 0},
		{Index: 0, Distance: 1},
		{Index: 1, Distance: 2},
	}
	ranks := make([]Index, len(row))
	FillRanks(row, ranks)

	for j, pair := range row {
		if int(ranks[pair.Index]) != j {
			t.Errorf("ranks[%d] = %d, want %d", pair.Index, ranks[pair.Index], j)
		}
	}
}
