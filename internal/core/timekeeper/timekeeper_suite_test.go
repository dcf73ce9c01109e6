package timekeeper_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestTimekeeper(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Timekeeper Suite")
}
