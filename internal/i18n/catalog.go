package i18n

// catalog holds the translation tables for the keys the client consumes.
// Texts mirror the backend's web interface so both front ends read the same.
var catalog = map[string]map[string]string{
	"zh": {
		"new_chat":             "新对话",
		"messages_count":       "条消息",
		"delete":               "删除",
		"credits_label":        "点",
		"btn_ok":               "确定",
		"btn_cancel":           "取消",
		"loading_text":         "正在生成图片...",
		"empty_state_title":    "对话内容与生成的图片将在这里显示",
		"empty_state_hint":     "输入提示词，执行 gen 开始创作",
		"click_to_view":        "✨ 点击图片查看高清大图或下载",
		"generated_image":      "生成的图片",
		"reference_image":      "参考图",
		"enter_prompt":         "请输入提示词",
		"generate_failed":      "生成失败",
		"upload_limit":         "最多只能上传 {0} 张参考图",
		"settings_locked":      "设置已锁定",
		"settings_locked_msg":  "更改分辨率或纵横比会重置对话记忆，AI 将无法记住之前生成的图片。\n\n如需使用不同设置，请点击确定创建新对话。",
		"network_error":        "网络错误，请稍后重试",
		"load_sessions_failed": "加载会话失败",
		"refresh_failed":       "图片已生成，但刷新对话失败，请重新打开会话",

		"error_timeout":             "图片生成超时，服务器繁忙，请稍后重试",
		"error_quota_exceeded":      "API 配额已用尽，请稍后重试",
		"error_service_unavailable": "服务暂时不可用，请稍后重试",
		"error_server_busy":         "服务器繁忙，请稍后重试",
		"error_invalid_request":     "请求参数无效，请检查提示词或图片",
		"error_permission_denied":   "API 权限被拒绝，请联系管理员",
		"error_invalid_input":       "请求无效，请检查输入内容",
		"error_generation_failed":   "图片生成失败，请稍后重试",
		"error_server_error":        "服务器错误，请稍后重试或联系管理员",
	},
	"en": {
		"new_chat":             "New Chat",
		"messages_count":       "messages",
		"delete":               "Delete",
		"credits_label":        "credits",
		"btn_ok":               "OK",
		"btn_cancel":           "Cancel",
		"loading_text":         "Generating image...",
		"empty_state_title":    "Chat content and generated images will appear here",
		"empty_state_hint":     "Enter a prompt and run gen to start creating",
		"click_to_view":        "✨ Click image to view HD or download",
		"generated_image":      "Generated image",
		"reference_image":      "Reference image",
		"enter_prompt":         "Please enter a prompt",
		"generate_failed":      "Generation failed",
		"upload_limit":         "Maximum {0} reference images allowed",
		"settings_locked":      "Settings Locked",
		"settings_locked_msg":  "Changing resolution or aspect ratio will reset chat memory, AI will not remember previously generated images.\n\nClick OK to create a new chat with different settings.",
		"network_error":        "Network error, please try again later",
		"load_sessions_failed": "Failed to load sessions",
		"refresh_failed":       "Image generated, but refreshing the chat failed; reopen the session",

		"error_timeout":             "Image generation timed out, server busy, please try again later",
		"error_quota_exceeded":      "API quota exceeded, please try again later",
		"error_service_unavailable": "Service temporarily unavailable, please try again later",
		"error_server_busy":         "Server busy, please try again later",
		"error_invalid_request":     "Invalid request parameters, please check prompt or image",
		"error_permission_denied":   "API permission denied, please contact administrator",
		"error_invalid_input":       "Invalid request, please check your input",
		"error_generation_failed":   "Image generation failed, please try again later",
		"error_server_error":        "Server error, please try again later or contact administrator",
	},
}
