package model

// seed is the e-board roster loaded at process start.
var seed = []Member{ //nolint:gochecknoglobals // read-only fixture, copied by Seed
	{ID: 1, Position: "Co-President", Name: "Kobe Uko", Img: `ebimg\IMG_E6074.JPG`, Hometown: "St.Louis, MO", Year: "Senior", Major: "Computer Science"},
	{ID: 2, Position: "Co-President", Name: "Lateef Saheed", Img: `ebimg\IMG_E6073.JPG`, Hometown: "Appleton, WI", Year: "Senior", Major: "Biology"},
	{ID: 3, Position: "Secretary", Name: "Matthias Dagne", Img: `ebimg\IMG_E6069.JPG`, Hometown: "Chicago, IL", Year: "Senior", Major: "Political Science"},
	{ID: 4, Position: "Communications Chair", Name: "Nate Mcginnis", Img: `ebimg\IMG_E6070.JPG`, Hometown: "Northbrook, IL", Year: "Senior", Major: "Political Science"},
	{ID: 5, Position: "Events Coordinator", Name: "Richard Kariuki", Img: `ebimg\IMG_E6070.JPG`, Hometown: "Rochester, MN", Year: "Junior", Major: "Materials Science & Engineering"},
	{ID: 6, Position: "Digital Network Chair", Name: "Henos Aman", Img: `ebimg\IMG_E6068.JPG`, Hometown: "Chicago, IL", Year: "Senior", Major: "Finance and Legal Studies"},
	{ID: 7, Position: "Treasurer", Name: "Isaiah Dobbins", Img: `ebimg\IMG_E6072.JPG`, Hometown: "Novi, MI", Year: "Senior", Major: "Neurobiology and Music"},
}

// Seed returns a fresh copy of the initial roster.
func Seed() []Member {
	out := make([]Member, len(seed))
	copy(out, seed)
	return out
}
