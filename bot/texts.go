package bot

// Menu labels double as command aliases.
const (
	btnBook    = "📅 Book"
	btnMine    = "📋 My appointments"
	btnRelease = "❌ Cancel appointment"
	btnInfo    = "ℹ️ Info"
)

const (
	txtWelcome = "👋 Hello, %s!\n" +
		"I book appointments. Here is what I can do:\n" +
		"📅 Book an appointment\n" +
		"📋 Show your appointments\n" +
		"❌ Cancel an appointment"
	txtHelp = "Use the menu below or these commands:\n" +
		"/book - book an appointment\n" +
		"/my - your appointments\n" +
		"/cancel\\_booking - cancel an appointment\n" +
		"/cancel - leave the current dialog"

	txtChooseDay     = "📅 Choose a day:"
	txtChooseTime    = "🕐 Free times on *%s*:"
	txtConfirm       = "Book *%s*?"
	txtChooseRelease = "Choose the appointment to cancel:"
	txtYourList      = "📋 Your appointments:\n\n"
	txtNoAppts       = "📭 You have no appointments."

	txtBooked    = "✅ You are booked for *%s*."
	txtSlotTaken = "⛔ Sorry, this time has just been taken. Choose another one with /book."
	txtNoSlots   = "😔 No free slots on *%s*. Try another day with /book."
	txtCancelled = "Okay, nothing was booked."
	txtReleased  = "🗑 Your appointment on *%s* is cancelled."
	txtNotFound  = "This appointment no longer exists."
	txtForbidden = "❌ This appointment cannot be cancelled."
	txtStorage   = "⚠️ Something went wrong. Please try again later."

	txtNoSession     = "This dialog has expired. Start again with /book or /cancel\\_booking."
	txtUseButtons    = "Please use the buttons below."
	txtSlotGone      = "That time is no longer available."
	txtInvalidChoice = "That option is not available."

	txtBoard      = "📋 All slots:\n\n"
	txtBoardEmpty = "❌ No slots configured."
	txtBoardFree  = "✅ Free"
	txtBoardTaken = "⛔ Taken"

	txtUnknown     = "I did not understand that. Use the menu or /help."
	txtUnknownBtn  = "This button no longer works."
	txtDenied      = "⛔ Access denied."
	txtRateLimited = "Too many requests, slow down a little."

	btnYes   = "✅ Confirm"
	btnNo    = "❌ Decline"
	btnAbort = "✖️ Cancel"
)

// toasts shown on the callback spinner
const (
	toastStale      = "This keyboard is outdated"
	toastExpired    = "Dialog expired"
	toastInvalid    = "Not available"
	toastSlotGone   = "Just taken, pick another time"
	toastUnexpected = "Finish the current step first"
)
