// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package i18n

var catalogs = map[Lang]map[Key]string{
	English: {
		FormTitle:        "Sign in to your WhatsApp instance",
		FormID:           "Instance ID",
		FormToken:        "API token",
		FormPhone:        "Phone number",
		FormIDHint:       "digits only",
		FormTokenHint:    "lowercase letters and digits",
		FormPhoneHint:    "recipient, digits only, e.g. 79991234567",
		FormSubmit:       "Sign in",
		FormHelp:         "tab/shift+tab: move • enter: sign in • esc: cancel • ctrl+c: quit",
		FormRegister:     "No account yet? Register at %s",
		FormCancelHint:   "esc: cancel",
		FormAlreadyInUse: "A session is already active",

		ReasonRequired:     "Required field",
		ReasonFormatID:     "Only digits are allowed",
		ReasonFormatToken:  "Only lowercase letters and digits are allowed",
		ReasonFormatPhone:  "Only digits are allowed",
		ReasonUnauthorized: "Invalid or unauthorized credentials",
		ReasonRejected:     "Instance not found",
		ReasonUnregistered: "Number is not registered in WhatsApp",

		BannerOffline:      "No internet connection",
		BannerServer:       "Server error: %s",
		BannerCanceled:     "Sign-in canceled",
		BannerUnauthorized: "The instance is not authorized. Scan the QR code in the console first.",
		BannerDismiss:      "esc: dismiss",

		StepValidate:    "Checking credentials",
		StepState:       "Checking authorization",
		StepDrain:       "Clearing old notifications",
		StepProbe:       "Sending test message",
		StepReceipt:     "Waiting for delivery receipt",
		StepAcknowledge: "Acknowledging receipt",
		StepSettings:    "Saving instance settings",
		StepCommit:      "Opening session",
		StepDone:        "Signed in",

		ChatTitle:       "Chat with +%s",
		ChatPlaceholder: "Type a message...",
		ChatHelp:        "enter: send • pgup/pgdn: scroll • ctrl+l: log out • ctrl+c: quit",
		ChatEmpty:       "No messages yet",
		ChatSendFailed:  "Message not sent: %s",
		ChatPollFailed:  "Could not fetch messages: %s",
		ChatStateChange: "Instance state changed: %s",
	},
	Russian: {
		FormTitle:        "Вход в инстанс WhatsApp",
		FormID:           "ID инстанса",
		FormToken:        "API токен",
		FormPhone:        "Номер телефона",
		FormIDHint:       "только цифры",
		FormTokenHint:    "строчные латинские буквы и цифры",
		FormPhoneHint:    "получатель, только цифры, например 79991234567",
		FormSubmit:       "Войти",
		FormHelp:         "tab/shift+tab: поле • enter: войти • esc: отмена • ctrl+c: выход",
		FormRegister:     "Нет аккаунта? Зарегистрируйтесь: %s",
		FormCancelHint:   "esc: отмена",
		FormAlreadyInUse: "Сессия уже активна",

		ReasonRequired:     "Обязательное поле",
		ReasonFormatID:     "Допускаются только цифры",
		ReasonFormatToken:  "Допускаются только строчные буквы и цифры",
		ReasonFormatPhone:  "Допускаются только цифры",
		ReasonUnauthorized: "Неверные или неавторизованные данные",
		ReasonRejected:     "Инстанс не найден",
		ReasonUnregistered: "Номер не зарегистрирован в WhatsApp",

		BannerOffline:      "Интернет соединение недоступно",
		BannerServer:       "Ошибка сервера: %s",
		BannerCanceled:     "Вход отменён",
		BannerUnauthorized: "Инстанс не авторизован. Сначала отсканируйте QR-код в консоли.",
		BannerDismiss:      "esc: закрыть",

		StepValidate:    "Проверка учётных данных",
		StepState:       "Проверка авторизации",
		StepDrain:       "Очистка старых уведомлений",
		StepProbe:       "Отправка тестового сообщения",
		StepReceipt:     "Ожидание подтверждения доставки",
		StepAcknowledge: "Подтверждение получения",
		StepSettings:    "Сохранение настроек инстанса",
		StepCommit:      "Открытие сессии",
		StepDone:        "Вход выполнен",

		ChatTitle:       "Чат с +%s",
		ChatPlaceholder: "Введите сообщение...",
		ChatHelp:        "enter: отправить • pgup/pgdn: прокрутка • ctrl+l: выйти • ctrl+c: закрыть",
		ChatEmpty:       "Сообщений пока нет",
		ChatSendFailed:  "Сообщение не отправлено: %s",
		ChatPollFailed:  "Не удалось получить сообщения: %s",
		ChatStateChange: "Состояние инстанса изменилось: %s",
	},
}
