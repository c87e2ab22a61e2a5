package converter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWorkersFor(t *testing.T) {
	testCases := map[int]int{
		0:  1,
		1:  1,
		2:  1,
		4:  3,
		5:  4,
		8:  6,
		10: 8,
		64: 51,
	}
	for cpus, expected := range testCases {
		assert.Equal(t, expected, workersFor(cpus), "cpus=%d", cpus)
	}
	assert.GreaterOrEqual(t, DefaultWorkers(), 1)
}
