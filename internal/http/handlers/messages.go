package handlers

import "strings"

type messageKey string

const (
	msgMissingFile         messageKey = "missing_file"
	msgMissingSession      messageKey = "missing_session"
	msgUpstreamUnavailable messageKey = "upstream_unavailable"
	msgUpstreamError       messageKey = "upstream_error"
	msgStillProcessing     messageKey = "still_processing"
	msgCourseNotFound      messageKey = "course_not_found"
	msgNoMedia             messageKey = "no_media"
	msgAssetNotFound       messageKey = "asset_not_found"
	msgAssetNotReady       messageKey = "asset_not_ready"
	msgUpstreamFailure     messageKey = "upstream_failure"
	msgInvalidID           messageKey = "invalid_id"
	msgInvalidPayload      messageKey = "invalid_payload"
	msgTitleRequired       messageKey = "title_required"
	msgMediaUnresolvable   messageKey = "media_unresolvable"
	msgInternal            messageKey = "internal"
)

var messages = map[string]map[messageKey]string{
	"en": {
		msgMissingFile:         "No file uploaded",
		msgMissingSession:      "sessionId parameter is required",
		msgUpstreamUnavailable: "Video service is unavailable",
		msgUpstreamError:       "Video processing failed",
		msgStillProcessing:     "Upload is still being processed",
		msgCourseNotFound:      "Course not found",
		msgNoMedia:             "No video available",
		msgAssetNotFound:       "Video asset not found",
		msgAssetNotReady:       "Video processing",
		msgUpstreamFailure:     "Video service error",
		msgInvalidID:           "Invalid course id",
		msgInvalidPayload:      "Invalid payload",
		msgTitleRequired:       "Title is required",
		msgMediaUnresolvable:   "Media asset does not exist",
		msgInternal:            "Internal error",
	},
	"hi": {
		msgMissingFile:         "कोई फ़ाइल अपलोड नहीं की गई",
		msgMissingSession:      "sessionId पैरामीटर आवश्यक है",
		msgUpstreamUnavailable: "वीडियो सेवा उपलब्ध नहीं है",
		msgUpstreamError:       "वीडियो प्रोसेसिंग विफल रही",
		msgStillProcessing:     "अपलोड अभी प्रोसेस हो रहा है",
		msgCourseNotFound:      "कोर्स नहीं मिला",
		msgNoMedia:             "कोई वीडियो उपलब्ध नहीं है",
		msgAssetNotFound:       "वीडियो एसेट नहीं मिला",
		msgAssetNotReady:       "वीडियो प्रोसेस हो रहा है",
		msgUpstreamFailure:     "वीडियो सेवा में त्रुटि",
		msgInvalidID:           "अमान्य कोर्स आईडी",
		msgInvalidPayload:      "अमान्य अनुरोध",
		msgTitleRequired:       "शीर्षक आवश्यक है",
		msgMediaUnresolvable:   "मीडिया एसेट मौजूद नहीं है",
		msgInternal:            "आंतरिक त्रुटि",
	},
}

func localize(locale string, key messageKey) string {
	if table, ok := messages[strings.ToLower(locale)]; ok {
		if msg, ok := table[key]; ok {
			return msg
		}
	}
	if msg, ok := messages["en"][key]; ok {
		return msg
	}
	return string(key)
}
