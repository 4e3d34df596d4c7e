package dashboard

// Project is a demo project card.
type Project struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Image    string `json:"image"`
	Progress int    `json:"progress"`
	Started  string `json:"started"`
	Due      string `json:"due"`
	Status   string `json:"status"`
}

// Project statuses.
const (
	StatusPlanning   = "planning"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
)

// Activity is a line of the recent activity list.
type Activity struct {
	Icon  string `json:"icon"`
	Title string `json:"title"`
	Time  string `json:"time"`
}

// Event is an upcoming community event.
type Event struct {
	Date        string `json:"date"`
	Month       string `json:"month"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Time        string `json:"time"`
	Action      string `json:"action"`
}

// FavoriteCard is a pattern tile of the favorites grid.
type FavoriteCard struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Image      string `json:"image"`
	Difficulty string `json:"difficulty"`
}

const imageBase = "https://d2culxnxbccemt.cloudfront.net/quilt/content/uploads/2022/09/"

var (
	dresdenImage     = imageBase + "22150216/Dresden-Delight-Quilt-NQC_TitleCards_16x9_titlecard_notext.jpg"
	miniCharmerImage = imageBase + "22150434/Mini-Charmer-Table-Runner-NQC_TitleCards_16x9_titlecard_notext.jpg"
	tetrisImage      = imageBase + "22150531/Tetris-Tumble-Quilt-NQC_TitleCards_16x9_titlecard_notext.jpg"
	modernAngleImage = imageBase + "22150439/Modern-Angle-Quilt-NQC_TitleCards_16x9_titlecard_notext.jpg"
	jellyRollImage   = imageBase + "22150358/Jelly-Roll-Jumble-Quilt-NQC_TitleCards_16x9_titlecard_notext.jpg"
)

// Projects returns the demo projects.
func Projects() []Project {
	return []Project{
		{ID: 1, Name: "Dresden Delight Quilt", Image: dresdenImage, Progress: 75, Started: "Jan 15, 2024", Due: "Feb 1", Status: StatusInProgress},
		{ID: 2, Name: "Mini Charmer Table Runner", Image: miniCharmerImage, Progress: 30, Started: "Jan 20, 2024", Due: "Feb 5", Status: StatusInProgress},
		{ID: 3, Name: "Tetris Tumble Quilt", Image: tetrisImage, Progress: 10, Started: "Jan 22, 2024", Due: "Feb 15", Status: StatusPlanning},
	}
}

// RecentActivity returns the demo activity list, newest first.
func RecentActivity() []Activity {
	return []Activity{
		{Icon: "📥", Title: `Downloaded "Dresden Delight Quilt"`, Time: "2 hours ago"},
		{Icon: "⭐", Title: `Added "Tetris Tumble Quilt" to favorites`, Time: "1 day ago"},
		{Icon: "📝", Title: `Updated notes for "Mini Charmer Table Runner"`, Time: "3 days ago"},
		{Icon: "🎯", Title: `Completed "Flying Geese Frenzy Quilt"`, Time: "1 week ago"},
	}
}

// Event actions.
const (
	ActionJoin     = "Join"
	ActionRegister = "Register"
	ActionRemindMe = "Remind Me"
)

// UpcomingEvents returns the demo events.
func UpcomingEvents() []Event {
	return []Event{
		{Date: "28", Month: "JAN", Title: "Virtual Quilt Along", Description: "Join our monthly quilt along session", Time: "2:00 PM - 4:00 PM EST", Action: ActionJoin},
		{Date: "05", Month: "FEB", Title: "Beginner Workshop", Description: "Learn basic quilting techniques", Time: "10:00 AM - 12:00 PM EST", Action: ActionRegister},
		{Date: "12", Month: "FEB", Title: "Pattern Release Day", Description: "New exclusive patterns for members", Time: "All Day", Action: ActionRemindMe},
	}
}

// FavoriteCards returns the favorites grid tiles.
func FavoriteCards() []FavoriteCard {
	return []FavoriteCard{
		{ID: "tetris-tumble", Name: "Tetris Tumble Quilt", Image: tetrisImage, Difficulty: "intermediate"},
		{ID: "dresden-delight", Name: "Dresden Delight Quilt", Image: dresdenImage, Difficulty: "intermediate"},
		{ID: "modern-angle", Name: "Modern Angle Quilt", Image: modernAngleImage, Difficulty: "advanced"},
		{ID: "jelly-roll", Name: "Jelly Roll Jumble Quilt", Image: jellyRollImage, Difficulty: "beginner"},
	}
}

// FavoriteCardIDs returns the pattern ids of the favorites grid.
func FavoriteCardIDs() []string {
	cards := FavoriteCards()
	ids := make([]string, len(cards))
	for i, c := range cards {
		ids[i] = c.ID
	}
	return ids
}
