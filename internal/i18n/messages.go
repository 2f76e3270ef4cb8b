package i18n

// Lang is a supported page language
type Lang string

const (
	LangAR Lang = "ar"
	LangEN Lang = "en"
)

// messages contains all translations keyed by language code.
// Values with verbs are passed through fmt.Sprintf by T.
var messages = map[Lang]map[string]string{
	LangAR: {
		"page_title":        "تسجيل الضيوف",
		"loading":           "جارٍ تحميل البيانات...",
		"invalid_link":      "الرابط غير صالح",
		"remaining":         "المتبقي: %d اسم",
		"no_more":           "تم استكمال العدد المسموح. شكرًا لتعاونك.",
		"counter":           "عدد الأسماء المدخلة: %d / %d",
		"exceeded":          "⚠️ تجاوزت الحد المسموح (%d)",
		"empty":             "يرجى إدخال اسم واحد على الأقل",
		"sending":           "جارٍ الإرسال...",
		"connection_error":  "خطأ في الاتصال، حاول مرة أخرى",
		"submit":            "إرسال",
		"toggle":            "English",
		"names_placeholder": "اكتب كل اسم في سطر منفصل",
		"name_placeholder":  "الاسم",
		"phone_placeholder": "رقم الهاتف",
		"add_row":           "إضافة ضيف",
		"remove_row":        "حذف",
		"missing_name":      "السطر %d: الاسم مطلوب",
		"invalid_phone":     "السطر %d: رقم الهاتف غير صالح",
		"submitted":         "تم الإرسال بنجاح",
		"verified":          "تم التحقق من وصول الأسماء بنجاح",
		"unverified":        "تعذر التأكد من الإرسال، يرجى تحديث الصفحة قبل المحاولة مجددًا",
		"rate_limited":      "طلبات كثيرة، يرجى الانتظار قليلًا",
	},
	LangEN: {
		"page_title":        "Guest Registration",
		"loading":           "Loading data...",
		"invalid_link":      "Invalid link",
		"remaining":         "Remaining: %d",
		"no_more":           "The allowed number has been completed. Thank you.",
		"counter":           "Entered names: %d / %d",
		"exceeded":          "⚠️ Limit exceeded (%d)",
		"empty":             "Please enter at least one name",
		"sending":           "Submitting...",
		"connection_error":  "Connection error, please try again",
		"submit":            "Submit",
		"toggle":            "العربية",
		"names_placeholder": "Write each name on its own line",
		"name_placeholder":  "Name",
		"phone_placeholder": "Phone",
		"add_row":           "Add guest",
		"remove_row":        "Remove",
		"missing_name":      "Row %d: name is required",
		"invalid_phone":     "Row %d: invalid phone number",
		"submitted":         "Submitted successfully",
		"verified":          "Submission verified successfully",
		"unverified":        "Could not confirm the submission, please reload the page before trying again",
		"rate_limited":      "Too many requests, please wait a moment",
	},
}
