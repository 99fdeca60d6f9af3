package worker

import "testing"

func TestBatchStart(t *testing.T) {
	s := Schedule{Worker: 1, Workers: 3, BatchSize: 4}
	// base_index = w*b = 1*4 = 4; batch k adds k*workers*batchSize = k*12.
	cases := []struct {
		k    int
		want int
	}{
		{0, 4},
		{1, 16},
		{2, 28},
	}
	for _, tc := range cases {
		if got := s.BatchStart(tc.k); got != tc.want {
			t.Errorf("BatchStart(%d) = %d, want %d", tc.k, got, tc.want)
		}
	}
}

func TestBatchTruncatesAtTotalFrames(t *testing.T) {
	s := Schedule{Worker: 0, Workers: 2, BatchSize: 4}
	got := s.Batch(0, 3)
	want := []int{0, 1, 2}
	if len(got) != len(want) {
		t.Fatalf("Batch() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Batch()[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestBatchEmptyPastTotalFrames(t *testing.T) {
	s := Schedule{Worker: 1, Workers: 2, BatchSize: 4}
	if got := s.Batch(0, 2); got != nil {
		t.Errorf("Batch() = %v, want nil", got)
	}
}

func TestSlotSequenceInterleavesWorkers(t *testing.T) {
	// 2 workers: worker 0's slots are 1,3,5,...; worker 1's are 2,4,6,...
	w0 := Schedule{Worker: 0, Workers: 2, BatchSize: 4}
	w1 := Schedule{Worker: 1, Workers: 2, BatchSize: 4}

	wantW0 := []int{1, 3, 5}
	wantW1 := []int{2, 4, 6}
	for k, want := range wantW0 {
		if got := w0.SlotSequence(k); got != want {
			t.Errorf("w0.SlotSequence(%d) = %d, want %d", k, got, want)
		}
	}
	for k, want := range wantW1 {
		if got := w1.SlotSequence(k); got != want {
			t.Errorf("w1.SlotSequence(%d) = %d, want %d", k, got, want)
		}
	}
}
