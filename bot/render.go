package bot

// Button is one inline keyboard button: a visible label plus the callback
// payload delivered back when it is pressed.
type Button struct {
	Label   string
	Payload string
}

// Renderer turns a handler's output into chat messages. Implementations own
// the replace-previous-message policy; handlers only say what to show.
type Renderer interface {
	// Choices shows a text prompt with an inline keyboard.
	Choices(text string, rows [][]Button) error
	// Photo shows an image with a caption and an inline keyboard.
	Photo(url, caption string, rows [][]Button) error
	// Text shows plain text, optionally with an inline keyboard.
	Text(text string, rows [][]Button) error
}
