package conversation

// User-facing dialog strings. The transport renders these verbatim.
const (
	msgGreeting = "Здравствуйте! Я — бот обратной связи FutureMakers.\n\nВыберите действие:\n📨 Оставить анонимно жалобу\n💡 Предложить идею\n📋 Узнать статус жалобы"

	msgIdeasUnavailable = "🔧 Раздел с идеями в разработке."
	msgAskCode          = "✍️ Отправьте код обращения (например: FM-2025-0001)"
	msgPickAction       = "Пожалуйста, выберите действие с помощью кнопок."

	msgAskTopic      = "Выберите тему обращения:"
	msgPickTopic     = "Пожалуйста, выберите тему из списка."
	msgAskText       = "✍️ Введите текст жалобы:"
	msgAskPhoto      = "📷 Прикрепите фото или нажмите 'Пропустить':"
	msgPhotoRetry    = "Пожалуйста, отправьте фото или нажмите 'Пропустить'"
	msgAskLocation   = "📍 Отправьте геолокацию или нажмите 'Пропустить':"
	msgLocationRetry = "Пожалуйста, отправьте геолокацию или нажмите 'Пропустить'"

	msgStatusNotFound = "❌ Обращение не найдено."
	msgCancelled      = "Диалог завершён."
)

// skipToken lets the user bypass the optional photo and location steps.
const skipToken = "пропустить"
