package smoke

import (
	"fmt"

	"github.com/google/uuid"
)

var (
	positions = []string{"Co-President", "Secretary", "Treasurer", "Events Coordinator", "Communications Chair"} //nolint:gochecknoglobals // fixtures
	years     = []string{"Freshman", "Sophomore", "Junior", "Senior"}                                            //nolint:gochecknoglobals // fixtures
	majors    = []string{"Biology", "Computer Science", "Finance", "Political Science"}                          //nolint:gochecknoglobals // fixtures
	towns     = []string{"Chicago, IL", "Novi, MI", "Rochester, MN", "St.Louis, MO"}                             //nolint:gochecknoglobals // fixtures
)

// generateMembers builds n distinct write payloads. Names carry a uuid so a
// run never collides with data already on the server.
func generateMembers(n int) []memberInput {
	out := make([]memberInput, n)
	for i := range out {
		out[i] = memberInput{
			Position: positions[i%len(positions)],
			Name:     fmt.Sprintf("smoke-%d-%s", i, uuid.NewString()[:8]),
			Hometown: towns[i%len(towns)],
			Year:     years[i%len(years)],
			Major:    majors[i%len(majors)],
		}
	}
	return out
}
